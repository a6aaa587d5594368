package recommend

import "math"

// cosine returns the cosine similarity of two dense vectors, or 0 when either has zero norm.
func cosine(a, b []float64) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// similarityMatrix computes the symmetric pairwise cosine matrix of rows.
func similarityMatrix(rows [][]float64) [][]float64 {
	n := len(rows)
	sim := make([][]float64, n)
	for i := range sim {
		sim[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			s := cosine(rows[i], rows[j])
			sim[i][j] = s
			sim[j][i] = s
		}
	}
	return sim
}
