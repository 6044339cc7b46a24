package geometry

import (
	"errors"

	"github.com/paulmach/orb"
)

// 文档注释：几何目录的最小数据结构
// 背景：一条记录对应拓扑资源中的一个国家形状及其身份字段；加载后只读，供整个会话期共享。
// 约束：仅保留 Polygon/MultiPolygon；Polygon 统一提升为单元素 MultiPolygon；Index 为源顺序下标。
type Record struct {
	Index      int
	ID         string
	Name       string
	Numeric    int
	HasNumeric bool
	Alpha2     string
	Shape      orb.MultiPolygon
	Bound      orb.Bound
}

// DecodeOptions：解码时使用的对象名与属性名
// 约束：名称属性按顺序取第一个非空值；NumericProperty 为空时数字码取自要素 id
type DecodeOptions struct {
	Object          string
	NameProperties  []string
	AlphaProperty   string
	NumericProperty string
}

// DefaultDecodeOptions：匹配 world-atlas 与 Natural Earth 的常见字段
func DefaultDecodeOptions() DecodeOptions {
	return DecodeOptions{
		Object:         "countries",
		NameProperties: []string{"name", "NAME", "ADMIN"},
		AlphaProperty:  "ISO_A2",
	}
}

var (
	ErrUnsupportedFormat = errors.New("geometry: unsupported topology format")
	ErrEmptyTopology     = errors.New("geometry: topology has no polygonal features")
	ErrObjectNotFound    = errors.New("geometry: topology object not found")
)
