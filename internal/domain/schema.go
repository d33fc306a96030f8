package domain

// Schema names the node kinds and relation types the queries traverse.
// Relation types are the sanitized metaedge tags written by the loader.
type Schema struct {
	DiseaseKind  string `yaml:"disease_kind"`
	CompoundKind string `yaml:"compound_kind"`
	GeneKind     string `yaml:"gene_kind"`

	Treats    []string `yaml:"treats"`
	Palliates []string `yaml:"palliates"`
	Causes    []string `yaml:"causes"`
	Localizes []string `yaml:"localizes"`

	LocationUpregulates   []string `yaml:"location_upregulates"`
	LocationDownregulates []string `yaml:"location_downregulates"`
	CompoundUpregulates   []string `yaml:"compound_upregulates"`
	CompoundDownregulates []string `yaml:"compound_downregulates"`
}

// DefaultSchema uses the Hetionet metaedge abbreviations.
func DefaultSchema() Schema {
	return Schema{
		DiseaseKind:  "Disease",
		CompoundKind: "Compound",
		GeneKind:     "Gene",

		Treats:    []string{"CtD"},
		Palliates: []string{"CpD"},
		Causes:    []string{"DaG"},
		Localizes: []string{"DlA"},

		LocationUpregulates:   []string{"AuG"},
		LocationDownregulates: []string{"AdG"},
		CompoundUpregulates:   []string{"CuG"},
		CompoundDownregulates: []string{"CdG"},
	}
}
