package runner

import (
	"fmt"
	"strings"
)

// Algorithm names one of the simulator's algorithm variants.
type Algorithm string

// Supported algorithm tags, exactly as the simulator expects them on its command line.
const (
	AlgorithmDFS               Algorithm = "DFS"
	AlgorithmPathDFS           Algorithm = "PATH-DFS"
	AlgorithmPathFloydWarshall Algorithm = "PATH-FW"
	AlgorithmClique            Algorithm = "CLIQUE"
	AlgorithmSatClique         Algorithm = "SAT-CLIQUE"
)

var algorithms = []Algorithm{
	AlgorithmDFS,
	AlgorithmPathDFS,
	AlgorithmPathFloydWarshall,
	AlgorithmClique,
	AlgorithmSatClique,
}

// Algorithms returns every supported tag in declaration order.
func Algorithms() []Algorithm {
	out := make([]Algorithm, len(algorithms))
	copy(out, algorithms)
	return out
}

// ParseAlgorithm resolves a tag case-insensitively.
func ParseAlgorithm(s string) (Algorithm, error) {
	tag := strings.ToUpper(strings.TrimSpace(s))
	for _, a := range algorithms {
		if string(a) == tag {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown algorithm %q (supported: %s)", s, strings.Join(algorithmNames(), ", "))
}

// Iterative reports whether the algorithm runs on random graphs in batch mode.
// SAT-CLIQUE takes a formula instead of graph parameters.
func (a Algorithm) Iterative() bool {
	return a != AlgorithmSatClique
}

func (a Algorithm) String() string {
	return string(a)
}

func algorithmNames() []string {
	names := make([]string, len(algorithms))
	for i, a := range algorithms {
		names[i] = string(a)
	}
	return names
}
