package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// URLType classifies the literal form of a paper reference.
type URLType string

const (
	URLTypeDOI    URLType = "doi"
	URLTypeDirect URLType = "direct"
)

const (
	doiResolverURL = "https://dx.doi.org/"
	pmcFetchURL    = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/efetch.fcgi?db=pmc&id="
	pmcHostMarker  = "ncbi.nlm.nih.gov"
)

var (
	doiExpr        = regexp.MustCompile(`^10[.][0-9]{4,}(?:[.][0-9]+)*/[^\s"&'<>]+\b`)
	pmcArticleExpr = regexp.MustCompile(`articles/([^/?#]+)`)
)

// Paper is one bibliographic reference resolved to a source document.
type Paper struct {
	ID          string
	ListID      string
	OriginalURL string
	DownloadURL string
	URLType     URLType
	IsProcessed bool
	CreatedAt   time.Time
}

// NewPaper classifies the reference once and stamps the creation time.
func NewPaper(listID, originalURL string) Paper {
	return Paper{
		ID:          uuid.NewString(),
		ListID:      listID,
		OriginalURL: originalURL,
		URLType:     ClassifyReference(originalURL),
		CreatedAt:   time.Now().UTC(),
	}
}

// ClassifyReference returns URLTypeDOI for strings in DOI form and URLTypeDirect otherwise.
func ClassifyReference(ref string) URLType {
	if IsDOI(ref) {
		return URLTypeDOI
	}
	return URLTypeDirect
}

// IsDOI reports whether ref starts with a DOI.
func IsDOI(ref string) bool {
	return doiExpr.MatchString(ref)
}

// DownloadURLFor maps a reference to a fetchable URL. An empty result means
// there is no known mapping.
func DownloadURLFor(ref string) string {
	if strings.Contains(ref, pmcHostMarker) {
		if m := pmcArticleExpr.FindStringSubmatch(ref); m != nil {
			return pmcFetchURL + m[1]
		}
		return ""
	}
	if IsDOI(ref) {
		return doiResolverURL + ref
	}
	return ""
}
