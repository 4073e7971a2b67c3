package enums

type ArticleKind string

const (
	ArticleKindArticle     ArticleKind = "article"
	ArticleKindPublication ArticleKind = "publication"
	ArticleKindResearch    ArticleKind = "research"
)

func (k ArticleKind) Valid() bool {
	switch k {
	case ArticleKindArticle, ArticleKindPublication, ArticleKindResearch:
		return true
	default:
		return false
	}
}
