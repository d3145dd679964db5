package registry

import "github.com/uzzalhcse/patterncore/pkg/patternmodel"

// index keeps the domain and template-type secondary indexes coherent
// with the primary id→pattern map, per spec §3's indexing invariant.
// Caller holds Registry.mu for every method below.
type index struct {
	byDomain map[string]map[string]struct{}
	byType   map[patternmodel.TemplateType]map[string]struct{}
}

func newIndex() *index {
	return &index{
		byDomain: make(map[string]map[string]struct{}),
		byType:   make(map[patternmodel.TemplateType]map[string]struct{}),
	}
}

func (ix *index) add(p *patternmodel.LearnedPattern) {
	for _, d := range p.Metrics.Domains {
		ix.addDomain(d, p.ID)
	}
	ix.addType(p.TemplateType, p.ID)
}

func (ix *index) addDomain(domain, id string) {
	set, ok := ix.byDomain[domain]
	if !ok {
		set = make(map[string]struct{})
		ix.byDomain[domain] = set
	}
	set[id] = struct{}{}
}

func (ix *index) addType(t patternmodel.TemplateType, id string) {
	set, ok := ix.byType[t]
	if !ok {
		set = make(map[string]struct{})
		ix.byType[t] = set
	}
	set[id] = struct{}{}
}

func (ix *index) remove(p *patternmodel.LearnedPattern) {
	for _, d := range p.Metrics.Domains {
		if set, ok := ix.byDomain[d]; ok {
			delete(set, p.ID)
			if len(set) == 0 {
				delete(ix.byDomain, d)
			}
		}
	}
	if set, ok := ix.byType[p.TemplateType]; ok {
		delete(set, p.ID)
		if len(set) == 0 {
			delete(ix.byType, p.TemplateType)
		}
	}
}

func (ix *index) idsForDomain(domain string) map[string]struct{} {
	return ix.byDomain[domain]
}

func (ix *index) idsForType(t patternmodel.TemplateType) map[string]struct{} {
	return ix.byType[t]
}
