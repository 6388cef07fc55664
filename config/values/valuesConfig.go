package values

// ImportValues are the tunables of a single import run. MarkupFraction has
// no compiled-in default: a config that omits it produces no derived
// selling prices at all.
type ImportValues struct {
	MarkupFraction     string `yaml:"markup-fraction"` // decimal string, e.g. "0.25"
	BatchSize          int    `yaml:"batch-size"`
	MaxHierarchyPasses int    `yaml:"max-hierarchy-passes"`
	PreferredLang      string `yaml:"preferred-lang"`
}

const (
	DefaultBatchSize          = 200
	DefaultMaxHierarchyPasses = 10
)

func (v *ImportValues) ApplyDefaults() {
	if v.BatchSize <= 0 {
		v.BatchSize = DefaultBatchSize
	}
	if v.MaxHierarchyPasses <= 0 {
		v.MaxHierarchyPasses = DefaultMaxHierarchyPasses
	}
}
