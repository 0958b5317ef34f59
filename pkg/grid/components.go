package grid

// DefaultComponents returns the standard component registry in iteration order.
func DefaultComponents() []*ComponentType {
	flow := []Attribute{{Name: "p"}, {Name: "q"}}
	branchFlow := []Attribute{{Name: "p0"}, {Name: "p1"}, {Name: "q0"}, {Name: "q1"}}

	return []*ComponentType{
		{
			Name:     "Bus",
			ListName: "buses",
			Kind:     KindBus,
			Results: []Attribute{
				{Name: "p"}, {Name: "q"},
				{Name: "v_mag_pu", Default: 1},
				{Name: "v_ang"},
			},
		},
		{Name: "Line", ListName: "lines", Kind: KindBranch, Results: branchFlow},
		{Name: "Transformer", ListName: "transformers", Kind: KindBranch, Results: branchFlow},
		{Name: "Link", ListName: "links", Kind: KindBranch, Results: []Attribute{{Name: "p0"}, {Name: "p1"}}},
		{Name: "Generator", ListName: "generators", Kind: KindOnePort, Results: flow},
		{Name: "Load", ListName: "loads", Kind: KindOnePort, Results: flow},
		{Name: "StorageUnit", ListName: "storage_units", Kind: KindOnePort, Results: flow},
		{Name: "Store", ListName: "stores", Kind: KindOnePort, Results: flow},
		{Name: "ShuntImpedance", ListName: "shunt_impedances", Kind: KindOnePort, Results: flow},
	}
}
