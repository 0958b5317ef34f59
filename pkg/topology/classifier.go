package topology

// classifyEndpoints splits switch endpoints into buses referenced by at
// least one element terminal and buses that exist only to anchor switches.
// The two results are disjoint and together cover endpoints.
func classifyEndpoints(endpoints []string, refs map[string][]terminalRef) (map[string]bool, []string) {
	electrical := make(map[string]bool, len(endpoints))
	var onlyLogical []string
	for _, id := range endpoints {
		if len(refs[id]) > 0 {
			electrical[id] = true
		} else {
			onlyLogical = append(onlyLogical, id)
		}
	}
	return electrical, onlyLogical
}
