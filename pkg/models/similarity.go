package models

// SimilarityMatrix holds pairwise scores over a batch, indexed by document
// order. Scores is square and symmetric.
type SimilarityMatrix struct {
	Labels   []string    `json:"labels" yaml:"labels"`
	SiteIDs  []string    `json:"site_ids,omitempty" yaml:"site_ids,omitempty"`
	Scores   [][]float64 `json:"scores" yaml:"scores"`
	Lexical  [][]float64 `json:"lexical,omitempty" yaml:"lexical,omitempty"`
	Embedder string      `json:"embedder" yaml:"embedder"`
}

// DuplicatePair is a pair of documents scoring at or above a threshold.
type DuplicatePair struct {
	A     string  `json:"a" yaml:"a"`
	B     string  `json:"b" yaml:"b"`
	Score float64 `json:"score" yaml:"score"`
}

// Size returns the number of rows.
func (m *SimilarityMatrix) Size() int {
	if m == nil {
		return 0
	}
	return len(m.Scores)
}

// NearDuplicates returns every unordered pair i<j with score >= threshold.
func (m *SimilarityMatrix) NearDuplicates(threshold float64) []DuplicatePair {
	var out []DuplicatePair
	for i := 0; i < m.Size(); i++ {
		for j := i + 1; j < len(m.Scores[i]); j++ {
			if m.Scores[i][j] >= threshold {
				out = append(out, DuplicatePair{A: m.Labels[i], B: m.Labels[j], Score: m.Scores[i][j]})
			}
		}
	}
	return out
}
