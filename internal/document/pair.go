package document

// Unit is what gets validated together: a definition, an environment, or a
// definition paired with the environment for the same model name and
// version.
type Unit struct {
	Definition  *Document
	Environment *Document
}

// Name returns the model name the unit describes.
func (u Unit) Name() string {
	if u.Definition != nil {
		return u.Definition.Name()
	}
	if u.Environment != nil {
		return u.Environment.Name()
	}
	return ""
}

// Version returns the model version the unit describes.
func (u Unit) Version() string {
	if u.Definition != nil {
		return u.Definition.Version()
	}
	if u.Environment != nil {
		return u.Environment.Version()
	}
	return ""
}

// Paths returns the files that make up the unit.
func (u Unit) Paths() []string {
	var paths []string
	if u.Definition != nil {
		paths = append(paths, u.Definition.Path)
	}
	if u.Environment != nil {
		paths = append(paths, u.Environment.Path)
	}
	return paths
}

// Label is a short description of the unit for output.
func (u Unit) Label() string {
	name := u.Name()
	if name == "" {
		if paths := u.Paths(); len(paths) > 0 {
			return paths[0]
		}
		return ""
	}
	if v := u.Version(); v != "" {
		name += "@" + v
	}
	return name
}

type modelKey struct {
	name    string
	version string
}

// Pair groups documents into units. A definition and an environment that
// declare the same name and version form one unit when each is the only
// document of its kind with that identity; every other document is a unit
// of its own. Units keep the order of their first document.
func Pair(docs []*Document) []Unit {
	defs := make(map[modelKey][]int)
	envs := make(map[modelKey][]int)
	for i, d := range docs {
		key := modelKey{d.Name(), d.Version()}
		switch d.Kind {
		case KindDefinition:
			defs[key] = append(defs[key], i)
		case KindEnvironment:
			envs[key] = append(envs[key], i)
		}
	}

	partner := make(map[int]int)
	for key, di := range defs {
		ei := envs[key]
		if len(di) == 1 && len(ei) == 1 {
			partner[di[0]] = ei[0]
			partner[ei[0]] = di[0]
		}
	}

	var units []Unit
	used := make(map[int]bool)
	for i, d := range docs {
		if used[i] {
			continue
		}
		used[i] = true
		u := Unit{}
		if j, ok := partner[i]; ok {
			used[j] = true
			if d.Kind == KindDefinition {
				u.Definition, u.Environment = d, docs[j]
			} else {
				u.Definition, u.Environment = docs[j], d
			}
		} else if d.Kind == KindDefinition {
			u.Definition = d
		} else {
			u.Environment = d
		}
		units = append(units, u)
	}
	return units
}
