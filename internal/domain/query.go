package domain

// NeighborhoodResult summarizes one entity and the names of its related
// compounds, genes and locations. Each list is deduplicated and sorted.
type NeighborhoodResult struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Kind      string   `json:"kind"`
	Drugs     []string `json:"drugs"`
	Genes     []string `json:"genes"`
	Locations []string `json:"locations"`
}

// CandidateDrug is a compound that reverses the disease-induced regulation
// of MatchedGeneCount distinct genes and is not a known treatment.
type CandidateDrug struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	MatchedGeneCount int      `json:"matched_gene_count"`
	Genes            []string `json:"genes,omitempty"`
}
