// 包 identity：几何记录 → 国家代码（ISO 3166-1 alpha-2）
// 背景：拓扑资源的身份字段有两种语义（数字区域码 / 内嵌 alpha-2 属性），由配置一次性决定。
// 约束：解析为纯函数；同一次加载只使用一种策略，不按记录回退到另一种策略。
package identity

import (
	"fmt"
	"strings"

	"been-map/internal/geometry"

	"github.com/biter777/countries"
)

// Code：大写 alpha-2 国家代码；零值表示不可解析
type Code string

const Unresolvable Code = ""

func (c Code) String() string { return string(c) }

// Strategy：身份解析策略
type Strategy int

const (
	// StrategyNumeric：ISO 3166-1 数字码查表（world-atlas 的 id 字段），默认策略
	StrategyNumeric Strategy = iota
	// StrategyAlpha2Property：读取记录内嵌的 alpha-2 属性（Natural Earth 的 ISO_A2）
	StrategyAlpha2Property
)

func (s Strategy) String() string {
	switch s {
	case StrategyNumeric:
		return "numeric"
	case StrategyAlpha2Property:
		return "alpha2"
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// ParseStrategy：解析配置值 numeric|alpha2，空值取默认
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "numeric", "iso_n3":
		return StrategyNumeric, nil
	case "alpha2", "iso_a2", "property":
		return StrategyAlpha2Property, nil
	}
	return 0, fmt.Errorf("identity: unknown strategy %q", s)
}

// Resolver：固定策略的解析器
type Resolver struct {
	strategy Strategy
}

func NewResolver(strategy Strategy) Resolver {
	return Resolver{strategy: strategy}
}

func (r Resolver) Strategy() Strategy { return r.strategy }

// Resolve：返回记录对应的国家代码；不可解析时返回 (Unresolvable, false)
func (r Resolver) Resolve(rec geometry.Record) (Code, bool) {
	switch r.strategy {
	case StrategyNumeric:
		if !rec.HasNumeric {
			return Unresolvable, false
		}
		c := countries.ByNumeric(rec.Numeric)
		if !c.IsValid() {
			return Unresolvable, false
		}
		return normalize(c.Alpha2())
	case StrategyAlpha2Property:
		return normalize(rec.Alpha2)
	}
	return Unresolvable, false
}

// normalize：两位 ASCII 字母才算有效代码（"-99" 等占位值不可解析）
func normalize(s string) (Code, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) != 2 {
		return Unresolvable, false
	}
	for i := 0; i < 2; i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return Unresolvable, false
		}
	}
	return Code(s), true
}

// Table：加载时一次性构建的下标 → 代码查找表
type Table struct {
	strategy Strategy
	codes    []Code
	byCode   map[Code][]int
}

// BuildTable：按记录顺序解析全部记录
func BuildTable(r Resolver, recs []geometry.Record) *Table {
	t := &Table{
		strategy: r.strategy,
		codes:    make([]Code, len(recs)),
		byCode:   make(map[Code][]int),
	}
	for i, rec := range recs {
		code, ok := r.Resolve(rec)
		if !ok {
			continue
		}
		t.codes[i] = code
		t.byCode[code] = append(t.byCode[code], i)
	}
	return t
}

func (t *Table) Strategy() Strategy { return t.strategy }

// Code：O(1) 查表；下标越界或不可解析返回 false
func (t *Table) Code(index int) (Code, bool) {
	if t == nil || index < 0 || index >= len(t.codes) {
		return Unresolvable, false
	}
	c := t.codes[index]
	return c, c != Unresolvable
}

// Records：同一代码对应的全部记录下标（按源顺序）
func (t *Table) Records(code Code) []int {
	if t == nil {
		return nil
	}
	return t.byCode[code]
}

// Resolved：可解析记录数
func (t *Table) Resolved() int {
	if t == nil {
		return 0
	}
	n := 0
	for _, idx := range t.byCode {
		n += len(idx)
	}
	return n
}
