package transfer

import "github.com/uzzalhcse/patterncore/pkg/patternmodel"

// DomainGroup is one entry in the static domain-grouping table from
// spec §4.4, used by the similarity scorer and by transfer's
// target-pattern derivation.
type DomainGroup struct {
	Name                 string
	Domains              []string
	SharedPathPatterns   []string
	SharedResponseFields []string
	AuthType             string
	CommonTemplateTypes  []patternmodel.TemplateType
}

// domainGroups is the fixed table named in spec §4.4: package_registries,
// code_hosting, qa_forums, knowledge_bases, social_news, developer_blogs.
var domainGroups = []DomainGroup{
	{
		Name:                "package_registries",
		Domains:             []string{"npmjs.com", "pypi.org", "rubygems.org", "crates.io", "packagist.org", "nuget.org"},
		SharedPathPatterns:  []string{"/package/", "/project/", "/gems/", "/crates/"},
		SharedResponseFields: []string{"name", "version", "description"},
		AuthType:            "none",
		CommonTemplateTypes: []patternmodel.TemplateType{patternmodel.TemplateRegistryLookup, patternmodel.TemplateJSONSuffix},
	},
	{
		Name:                "code_hosting",
		Domains:             []string{"github.com", "gitlab.com", "bitbucket.org", "codeberg.org"},
		SharedPathPatterns:  []string{"/{owner}/{repo}"},
		SharedResponseFields: []string{"full_name", "description", "stargazers_count"},
		AuthType:            "oauth2",
		CommonTemplateTypes: []patternmodel.TemplateType{patternmodel.TemplateRESTResource},
	},
	{
		Name:                "qa_forums",
		Domains:             []string{"stackoverflow.com", "superuser.com", "serverfault.com", "askubuntu.com"},
		SharedPathPatterns:  []string{"/questions/"},
		SharedResponseFields: []string{"title", "body", "score"},
		AuthType:            "none",
		CommonTemplateTypes: []patternmodel.TemplateType{patternmodel.TemplateQueryAPI},
	},
	{
		Name:                "knowledge_bases",
		Domains:             []string{"wikipedia.org", "fandom.com", "wikia.org"},
		SharedPathPatterns:  []string{"/wiki/"},
		SharedResponseFields: []string{"title", "extract"},
		AuthType:            "none",
		CommonTemplateTypes: []patternmodel.TemplateType{patternmodel.TemplateQueryAPI},
	},
	{
		Name:                "social_news",
		Domains:             []string{"news.ycombinator.com", "reddit.com", "lobste.rs"},
		SharedPathPatterns:  []string{"/item", "/comments/", "/s/"},
		SharedResponseFields: []string{"title", "score", "by"},
		AuthType:            "none",
		CommonTemplateTypes: []patternmodel.TemplateType{patternmodel.TemplateFirebaseREST, patternmodel.TemplateJSONSuffix},
	},
	{
		Name:                "developer_blogs",
		Domains:             []string{"dev.to", "hashnode.com", "medium.com"},
		SharedPathPatterns:  []string{"/{slug}"},
		SharedResponseFields: []string{"title", "body_markdown", "description"},
		AuthType:            "none",
		CommonTemplateTypes: []patternmodel.TemplateType{patternmodel.TemplateRESTResource},
	},
}

// groupFor returns the domain group containing domain, if any.
func groupFor(domain string) (DomainGroup, bool) {
	for _, g := range domainGroups {
		for _, d := range g.Domains {
			if d == domain {
				return g, true
			}
		}
	}
	return DomainGroup{}, false
}

func sameGroup(a, b string) bool {
	ga, okA := groupFor(a)
	if !okA {
		return false
	}
	gb, okB := groupFor(b)
	return okB && ga.Name == gb.Name
}

func groupListsTemplateType(domain string, t patternmodel.TemplateType) bool {
	g, ok := groupFor(domain)
	if !ok {
		return false
	}
	for _, ct := range g.CommonTemplateTypes {
		if ct == t {
			return true
		}
	}
	return false
}
