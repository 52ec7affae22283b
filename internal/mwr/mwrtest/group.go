// Package mwrtest builds in-memory MWR files for tests. The files implement
// the go-native-netcdf group API, so they are read through the same store
// code as files on disk.
package mwrtest

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/batchatco/go-native-netcdf/netcdf/util"
)

var errNotFound = errors.New("not found")

// Attr is a name/value pair.
type Attr struct {
	Key   string
	Value any
}

// Group is an in-memory netCDF group.
type Group struct {
	attrs      *attrMap
	vars       map[string]*api.Variable
	varNames   []string
	groups     map[string]*Group
	groupNames []string
	dims       map[string]uint64
	closed     int
}

// NewGroup returns an empty group.
func NewGroup() *Group {
	return &Group{
		attrs:  newAttrMap(),
		vars:   map[string]*api.Variable{},
		groups: map[string]*Group{},
		dims:   map[string]uint64{},
	}
}

// SetDim declares a dimension of the group. Undeclared dimensions are
// derived from the variables that use them.
func (g *Group) SetDim(name string, n uint64) {
	g.dims[name] = n
}

// SetAttr sets a group attribute.
func (g *Group) SetAttr(key string, value any) {
	g.attrs.om.Add(key, value)
}

// Sub returns the group at the "/"-delimited path, creating it and its
// parents as needed.
func (g *Group) Sub(path string) *Group {
	cur := g
	for _, name := range strings.Split(strings.Trim(path, "/"), "/") {
		if name == "" {
			continue
		}
		next, ok := cur.groups[name]
		if !ok {
			next = NewGroup()
			cur.groups[name] = next
			cur.groupNames = append(cur.groupNames, name)
		}
		cur = next
	}
	return cur
}

// AddVar adds, or replaces, the variable at path. values is a scalar or a
// nested slice.
func (g *Group) AddVar(path string, values any, dims []string, attrs ...Attr) {
	path = strings.Trim(path, "/")
	dir, name := "", path
	if i := strings.LastIndex(path, "/"); i >= 0 {
		dir, name = path[:i], path[i+1:]
	}
	parent := g.Sub(dir)
	am := newAttrMap()
	for _, a := range attrs {
		am.om.Add(a.Key, a.Value)
	}
	if _, ok := parent.vars[name]; !ok {
		parent.varNames = append(parent.varNames, name)
	}
	parent.vars[name] = &api.Variable{
		Values:     values,
		Dimensions: dims,
		Attributes: am,
	}
}

// SetVarAttr sets an attribute of the variable at path.
func (g *Group) SetVarAttr(path, key string, value any) {
	path = strings.Trim(path, "/")
	dir, name := "", path
	if i := strings.LastIndex(path, "/"); i >= 0 {
		dir, name = path[:i], path[i+1:]
	}
	v, ok := g.Sub(dir).vars[name]
	if !ok {
		panic(fmt.Sprintf("mwrtest: no variable %s", path))
	}
	v.Attributes.(*attrMap).om.Add(key, value)
}

// RemoveVar deletes the variable at path.
func (g *Group) RemoveVar(path string) {
	path = strings.Trim(path, "/")
	dir, name := "", path
	if i := strings.LastIndex(path, "/"); i >= 0 {
		dir, name = path[:i], path[i+1:]
	}
	parent := g.Sub(dir)
	delete(parent.vars, name)
	parent.varNames = slices.DeleteFunc(parent.varNames, func(s string) bool { return s == name })
}

// Closed reports how many times Close was called on the group.
func (g *Group) Closed() int {
	return g.closed
}

func (g *Group) Close() {
	g.closed++
}

func (g *Group) Attributes() api.AttributeMap {
	return g.attrs
}

func (g *Group) ListVariables() []string {
	return slices.Clone(g.varNames)
}

func (g *Group) GetVariable(name string) (*api.Variable, error) {
	v, ok := g.vars[name]
	if !ok {
		return nil, fmt.Errorf("variable %s: %w", name, errNotFound)
	}
	return v, nil
}

func (g *Group) GetVarGetter(name string) (api.VarGetter, error) {
	v, err := g.GetVariable(name)
	if err != nil {
		return nil, err
	}
	return &varGetter{v: v}, nil
}

func (g *Group) ListSubgroups() []string {
	return slices.Clone(g.groupNames)
}

func (g *Group) GetGroup(name string) (api.Group, error) {
	sub, ok := g.groups[strings.Trim(name, "/")]
	if !ok {
		return nil, fmt.Errorf("group %s: %w", name, errNotFound)
	}
	return sub, nil
}

func (g *Group) ListTypes() []string {
	return nil
}

func (g *Group) GetType(string) (string, bool) {
	return "", false
}

func (g *Group) GetGoType(string) (string, bool) {
	return "", false
}

func (g *Group) ListDimensions() []string {
	var dims []string
	for name := range g.dims {
		dims = append(dims, name)
	}
	slices.Sort(dims)
	for _, name := range g.varNames {
		for _, d := range g.vars[name].Dimensions {
			if !slices.Contains(dims, d) {
				dims = append(dims, d)
			}
		}
	}
	return dims
}

func (g *Group) GetDimension(name string) (uint64, bool) {
	if n, ok := g.dims[name]; ok {
		return n, true
	}
	for _, vn := range g.varNames {
		v := g.vars[vn]
		if i := slices.Index(v.Dimensions, name); i >= 0 {
			shape := shapeOf(v.Values)
			if i < len(shape) {
				return uint64(shape[i]), true
			}
		}
	}
	return 0, false
}

type varGetter struct {
	v *api.Variable
}

func (vg *varGetter) Len() int64 {
	rv := reflect.ValueOf(vg.v.Values)
	if rv.Kind() != reflect.Slice {
		return 1
	}
	return int64(rv.Len())
}

func (vg *varGetter) Values() (any, error) {
	return vg.v.Values, nil
}

func (vg *varGetter) GetSlice(begin, end int64) (any, error) {
	rv := reflect.ValueOf(vg.v.Values)
	if rv.Kind() != reflect.Slice || begin < 0 || end > int64(rv.Len()) || begin > end {
		return nil, fmt.Errorf("slice [%d:%d]: %w", begin, end, errNotFound)
	}
	return rv.Slice(int(begin), int(end)).Interface(), nil
}

func (vg *varGetter) GetSliceMD(begin, end []int64) (any, error) {
	return nil, errors.New("mwrtest: multi-dimensional slices are not supported")
}

func (vg *varGetter) Shape() []int64 {
	var shape []int64
	for _, n := range shapeOf(vg.v.Values) {
		shape = append(shape, int64(n))
	}
	return shape
}

func (vg *varGetter) Dimensions() []string {
	return vg.v.Dimensions
}

func (vg *varGetter) Attributes() api.AttributeMap {
	return vg.v.Attributes
}

func (vg *varGetter) Type() string {
	return ""
}

func (vg *varGetter) GoType() string {
	t := reflect.TypeOf(vg.v.Values)
	for t != nil && t.Kind() == reflect.Slice {
		t = t.Elem()
	}
	if t == nil {
		return ""
	}
	return t.String()
}

func shapeOf(values any) []int {
	var shape []int
	for rv := reflect.ValueOf(values); rv.Kind() == reflect.Slice; rv = rv.Index(0) {
		shape = append(shape, rv.Len())
		if rv.Len() == 0 {
			break
		}
	}
	return shape
}

// attrMap adapts util.OrderedMap to api.AttributeMap.
type attrMap struct {
	om *util.OrderedMap
}

func newAttrMap() *attrMap {
	om, err := util.NewOrderedMap(nil, nil)
	if err != nil {
		panic(err)
	}
	return &attrMap{om: om}
}

func (a *attrMap) Keys() []string {
	return a.om.Keys()
}

func (a *attrMap) Get(key string) (any, bool) {
	return a.om.Get(key)
}

func (a *attrMap) GetType(key string) (string, bool) {
	v, ok := a.om.Get(key)
	if !ok {
		return "", false
	}
	return fmt.Sprintf("%T", v), true
}

func (a *attrMap) GetGoType(key string) (string, bool) {
	return a.GetType(key)
}
