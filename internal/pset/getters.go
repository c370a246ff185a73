package pset

import "fmt"

// get fails with ErrUnknownParameter or ErrTypeMismatch.
func get[T Value](m *Module, name string) (T, error) {
	var zero T
	v, err := m.Get(name)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s.%s is %s, not %s", ErrTypeMismatch, m.label, name, v.Kind(), zero.Kind())
	}
	return t, nil
}

// GetBool returns the named bool parameter.
func (m *Module) GetBool(name string) (bool, error) {
	v, err := get[Bool](m, name)
	return bool(v), err
}

// GetInt32 returns the named int32 parameter.
func (m *Module) GetInt32(name string) (int32, error) {
	v, err := get[Int32](m, name)
	return int32(v), err
}

// GetUInt32 returns the named uint32 parameter.
func (m *Module) GetUInt32(name string) (uint32, error) {
	v, err := get[UInt32](m, name)
	return uint32(v), err
}

// GetInt64 returns the named int64 parameter.
func (m *Module) GetInt64(name string) (int64, error) {
	v, err := get[Int64](m, name)
	return int64(v), err
}

// GetUInt64 returns the named uint64 parameter.
func (m *Module) GetUInt64(name string) (uint64, error) {
	v, err := get[UInt64](m, name)
	return uint64(v), err
}

// GetDouble returns the named double parameter.
func (m *Module) GetDouble(name string) (float64, error) {
	v, err := get[Double](m, name)
	return float64(v), err
}

// GetString returns the named string parameter.
func (m *Module) GetString(name string) (string, error) {
	v, err := get[String](m, name)
	return string(v), err
}

// GetVDouble returns a copy of the named vdouble parameter.
func (m *Module) GetVDouble(name string) ([]float64, error) {
	v, err := get[VDouble](m, name)
	return []float64(v), err
}

// GetVInt32 returns a copy of the named vint32 parameter.
func (m *Module) GetVInt32(name string) ([]int32, error) {
	v, err := get[VInt32](m, name)
	return []int32(v), err
}

// GetVString returns a copy of the named vstring parameter.
func (m *Module) GetVString(name string) ([]string, error) {
	v, err := get[VString](m, name)
	return []string(v), err
}

// GetInputTag returns the named InputTag parameter.
func (m *Module) GetInputTag(name string) (InputTag, error) {
	return get[InputTag](m, name)
}

// GetVInputTag returns a copy of the named VInputTag parameter.
func (m *Module) GetVInputTag(name string) ([]InputTag, error) {
	v, err := get[VInputTag](m, name)
	return []InputTag(v), err
}

// DoubleOrDefault returns the named double, or def when it is absent or of another type.
func (m *Module) DoubleOrDefault(name string, def float64) float64 {
	v, err := m.GetDouble(name)
	if err != nil {
		return def
	}
	return v
}

// BoolOrDefault returns the named bool, or def when it is absent or of another type.
func (m *Module) BoolOrDefault(name string, def bool) bool {
	v, err := m.GetBool(name)
	if err != nil {
		return def
	}
	return v
}
