package depgraph

// ImportEvidence normalizes a scanned import count into an evidence score:
// min(1, count / normalization).
func ImportEvidence(importCount int, normalization float64) float64 {
	if importCount <= 0 || normalization <= 0 {
		return 0
	}
	s := float64(importCount) / normalization
	if s > 1 {
		s = 1
	}
	return s
}

// DeclaredEvidence is the score for an explicitly declared dependency.
// Declared config is authoritative, so the score is clamped to 1.0.
func DeclaredEvidence() float64 { return 1.0 }

// Layer names recognized by inference. Repositories with any other (or no)
// layer tag receive no inferred edges.
const (
	LayerAPI     = "api"
	LayerCore    = "core"
	LayerModule  = "module"
	LayerTesting = "testing"
)

// layerDependsOn maps a layer to the layer it depends on. A repository in
// layer L is assumed to depend on every repository in layerDependsOn[L],
// yielding an impact-flow edge from the depended-on repository.
var layerDependsOn = map[string]string{
	LayerCore:    LayerAPI,
	LayerModule:  LayerCore,
	LayerTesting: LayerCore,
}

// InferLayerEdges adds layer-inference evidence between registered
// repositories based on their layer tags. score is the fixed per-pair
// constant (zero disables inference). Errors from individual edges are
// not possible here because only registered nodes are visited.
func InferLayerEdges(g *Graph, score float64) {
	if score <= 0 {
		return
	}

	snap := g.Snapshot()
	byLayer := make(map[string][]string)
	for _, name := range snap.Repositories() {
		node, _ := snap.Repository(name)
		if node.Layer != "" {
			byLayer[node.Layer] = append(byLayer[node.Layer], name)
		}
	}

	for layer, upstream := range layerDependsOn {
		for _, dependent := range byLayer[layer] {
			for _, dependedOn := range byLayer[upstream] {
				if dependedOn == dependent {
					continue
				}
				_ = g.AddEvidence(dependedOn, dependent, SignalLayer, score)
			}
		}
	}
}
