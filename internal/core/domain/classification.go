package domain

import "strings"

// Classification is a structured label (module/sub-module/category/version)
// attached to persisted records for filtering and analytics. It never drives
// business logic branching.
type Classification struct {
	Module    string `json:"module"`
	SubModule string `json:"subModule"`
	Category  string `json:"category"`
	Version   string `json:"version"`
}

// String renders the tag in its canonical slash-separated form.
func (c Classification) String() string {
	return c.Module + "/" + c.SubModule + "/" + c.Category + "/" + c.Version
}

// ClassifyTransaction computes the classification tag for a transaction category.
func ClassifyTransaction(category TransactionCategory) Classification {
	return Classification{
		Module:    "gl",
		SubModule: "posting",
		Category:  strings.ToLower(string(category)),
		Version:   "v1",
	}
}

// ParseClassification splits a stored tag back into its parts. Malformed tags
// yield a zero-valued Classification rather than an error; the tag is advisory.
func ParseClassification(tag string) Classification {
	parts := strings.SplitN(tag, "/", 4)
	if len(parts) != 4 {
		return Classification{}
	}
	return Classification{Module: parts[0], SubModule: parts[1], Category: parts[2], Version: parts[3]}
}
