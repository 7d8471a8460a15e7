package severityutils

// Issue types reported by the server.
const (
	CodeSmell       IssueType = "CODE_SMELL"
	Bug             IssueType = "BUG"
	Vulnerability   IssueType = "VULNERABILITY"
	SecurityHotspot IssueType = "SECURITY_HOTSPOT"
)

type IssueType string

func (t IssueType) String() string {
	return string(t)
}

// PlatformCategory is the rule category vocabulary of the analysis platform.
const (
	CategoryConvention  PlatformCategory = "convention"
	CategoryCorrectness PlatformCategory = "correctness"
	CategorySecurity    PlatformCategory = "security"
)

type PlatformCategory string

func (c PlatformCategory) String() string {
	return string(c)
}

var issueTypeCategories = map[IssueType]PlatformCategory{
	CodeSmell:       CategoryConvention,
	Bug:             CategoryCorrectness,
	Vulnerability:   CategorySecurity,
	SecurityHotspot: CategorySecurity,
}

// ToPlatformCategory maps an issue type onto the platform category, unknown
// types fall back to convention.
func ToPlatformCategory(issueType IssueType) PlatformCategory {
	if category, ok := issueTypeCategories[issueType]; ok {
		return category
	}
	return CategoryConvention
}
