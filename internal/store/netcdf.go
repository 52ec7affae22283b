package store

import (
	"fmt"
	"slices"
	"strings"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
)

// NetCDF is a Store backed by a netCDF4 (HDF5) or classic netCDF file.
type NetCDF struct {
	root   api.Group
	groups map[string]api.Group
}

// Open opens the netCDF file at filePath.
func Open(filePath string) (*NetCDF, error) {
	nc, err := netcdf.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filePath, err)
	}
	return New(nc), nil
}

// New wraps an opened group tree. The returned store takes ownership of nc.
func New(nc api.Group) *NetCDF {
	return &NetCDF{
		root:   nc,
		groups: map[string]api.Group{},
	}
}

// Close closes all groups opened by the store and the root group.
func (n *NetCDF) Close() {
	for p, g := range n.groups {
		g.Close()
		delete(n.groups, p)
	}
	if n.root != nil {
		n.root.Close()
		n.root = nil
	}
}

// Variable implements Store.
func (n *NetCDF) Variable(path string) (*Variable, error) {
	dir, name := split(path)
	g, err := n.group(dir)
	if err != nil {
		return nil, fmt.Errorf("variable %s: %w", path, err)
	}
	if !slices.Contains(g.ListVariables(), name) {
		return nil, fmt.Errorf("variable %s: %w", path, ErrNotFound)
	}
	vr, err := g.GetVariable(name)
	if err != nil {
		return nil, fmt.Errorf("variable %s: %w", path, err)
	}
	data, shape, err := flatten(vr.Values)
	if err != nil {
		return nil, fmt.Errorf("variable %s: %w", path, err)
	}
	if len(shape) != len(vr.Dimensions) {
		return nil, fmt.Errorf("variable %s: %w: %d dimensions for values of rank %d", path, ErrUnsupported, len(vr.Dimensions), len(shape))
	}
	n.fillShape(dir, vr.Dimensions, shape)
	return &Variable{
		Path:  path,
		Dims:  vr.Dimensions,
		Shape: shape,
		Data:  data,
		Attrs: attrs(vr.Attributes),
	}, nil
}

// Attribute implements Store.
func (n *NetCDF) Attribute(path, key string) (Attr, error) {
	var am api.AttributeMap
	if g, err := n.group(clean(path)); err == nil {
		am = g.Attributes()
	} else {
		dir, name := split(path)
		g, err := n.group(dir)
		if err != nil {
			return Attr{}, fmt.Errorf("attribute %s:%s: %w", path, key, err)
		}
		if !slices.Contains(g.ListVariables(), name) {
			return Attr{}, fmt.Errorf("attribute %s:%s: %w", path, key, ErrNotFound)
		}
		vg, err := g.GetVarGetter(name)
		if err != nil {
			return Attr{}, fmt.Errorf("attribute %s:%s: %w", path, key, err)
		}
		am = vg.Attributes()
	}
	a := attrs(am).Get(key)
	if !a.Present() {
		return a, fmt.Errorf("attribute %s:%s: %w", path, key, ErrNotFound)
	}
	return a, nil
}

// group walks the group tree one component at a time, caching every group
// it opens.
func (n *NetCDF) group(path string) (api.Group, error) {
	if n.root == nil {
		return nil, fmt.Errorf("store is closed")
	}
	if path == "" {
		return n.root, nil
	}
	if g, ok := n.groups[path]; ok {
		return g, nil
	}
	parentPath, name := split(path)
	parent, err := n.group(parentPath)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(parent.ListSubgroups(), name) {
		return nil, fmt.Errorf("group %s: %w", path, ErrNotFound)
	}
	g, err := parent.GetGroup(name)
	if err != nil {
		return nil, fmt.Errorf("group %s: %w", path, err)
	}
	n.groups[path] = g
	return g, nil
}

// fillShape sets the lengths the values of an empty array can't tell from
// the declared dimensions, looked up from dir towards the root.
func (n *NetCDF) fillShape(dir string, dims []string, shape []int) {
	zero := slices.Index(shape, 0)
	if zero < 0 {
		return
	}
	for i := zero + 1; i < len(shape); i++ {
		if shape[i] != 0 {
			continue
		}
		for p := dir; ; p, _ = split(p) {
			if g, err := n.group(p); err == nil {
				if d, ok := g.GetDimension(dims[i]); ok {
					shape[i] = int(d)
					break
				}
			}
			if p == "" {
				break
			}
		}
	}
}

func attrs(am api.AttributeMap) Attrs {
	a := Attrs{}
	if am == nil {
		return a
	}
	for _, k := range am.Keys() {
		if v, ok := am.Get(k); ok {
			a[k] = v
		}
	}
	return a
}

func clean(path string) string {
	return strings.Trim(path, "/")
}

// split separates the group part of a path from its last component.
func split(path string) (dir, name string) {
	path = clean(path)
	i := strings.LastIndex(path, "/")
	if i < 0 {
		return "", path
	}
	return path[:i], path[i+1:]
}
