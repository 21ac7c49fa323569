package assets

// Store is the server's asset catalog: a path-keyed map of assets plus
// a secondary index from package id to the path that currently owns
// it, grounded on original_source/src/net/asset_manager.rs.
type Store struct {
	assets       map[string]Asset
	packagePaths map[string]string
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		assets:       make(map[string]Asset),
		packagePaths: make(map[string]string),
	}
}

// Get returns the asset stored at path, if any.
func (s *Store) Get(path string) (Asset, bool) {
	a, ok := s.assets[path]
	return a, ok
}

// Set stores asset at path and indexes any PackageRef alternate names
// it declares so dependents can resolve it by package id.
func (s *Store) Set(path string, asset Asset) {
	for _, alt := range asset.AlternateNames {
		if ref, ok := alt.(PackageRef); ok {
			s.packagePaths[ref.ID] = path
		}
	}
	s.assets[path] = asset
}

// Remove deletes the asset at path, clearing any package-id index
// entries that still point at it (an entry that was overwritten by a
// newer asset at a different path is left alone).
func (s *Store) Remove(path string) {
	asset, ok := s.assets[path]
	if !ok {
		return
	}
	delete(s.assets, path)

	for _, alt := range asset.AlternateNames {
		ref, ok := alt.(PackageRef)
		if !ok {
			continue
		}
		if s.packagePaths[ref.ID] == path {
			delete(s.packagePaths, ref.ID)
		}
	}
}

// Paths returns every currently stored asset path, in no particular
// order.
func (s *Store) Paths() []string {
	paths := make([]string, 0, len(s.assets))
	for p := range s.assets {
		paths = append(paths, p)
	}
	return paths
}

// FlattenedDependencyChain returns assetPath's transitive dependency
// chain in post-order (each dependency appears before the thing that
// needs it, with no duplicates), ready to stream to a client ahead of
// assetPath itself.
func (s *Store) FlattenedDependencyChain(assetPath string) []string {
	var chain []string
	seen := make(map[string]bool)
	s.flatten(assetPath, &chain, seen)
	return chain
}

func (s *Store) flatten(assetPath string, chain *[]string, seen map[string]bool) {
	asset, ok := s.assets[assetPath]
	if !ok {
		return
	}

	for _, dep := range asset.Dependencies {
		depPath, ok := s.resolveDependencyPath(dep)
		if !ok {
			continue
		}
		if seen[depPath] {
			continue
		}
		s.flatten(depPath, chain, seen)
	}

	if !seen[assetPath] {
		seen[assetPath] = true
		*chain = append(*chain, assetPath)
	}
}

func (s *Store) resolveDependencyPath(dep AssetID) (string, bool) {
	switch d := dep.(type) {
	case AssetPath:
		return string(d), true
	case PackageRef:
		path, ok := s.packagePaths[d.ID]
		return path, ok
	default:
		return "", false
	}
}
