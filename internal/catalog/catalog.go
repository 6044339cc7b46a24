// 包 catalog：静态国家目录 {code, name, continent}
// 背景：目录由宿主提供（内置列表或 Postgres），地图与提示框只读使用它生成标签与大洲分组。
package catalog

import (
	"strings"

	"been-map/internal/identity"
)

type Country struct {
	Code      identity.Code `json:"code"`
	Name      string        `json:"name"`
	Continent string        `json:"continent"`
}

// Catalog：有序、只读
type Catalog struct {
	countries []Country
	byCode    map[identity.Code]int
}

// New：代码统一大写；重复代码保留第一条，空代码丢弃
func New(list []Country) *Catalog {
	c := &Catalog{byCode: make(map[identity.Code]int, len(list))}
	for _, item := range list {
		item.Code = identity.Code(strings.ToUpper(strings.TrimSpace(string(item.Code))))
		item.Name = strings.TrimSpace(item.Name)
		item.Continent = strings.TrimSpace(item.Continent)
		if item.Code == identity.Unresolvable {
			continue
		}
		if _, dup := c.byCode[item.Code]; dup {
			continue
		}
		c.byCode[item.Code] = len(c.countries)
		c.countries = append(c.countries, item)
	}
	return c
}

// Default：内置的 20 国目录
func Default() *Catalog {
	return New([]Country{
		{"US", "United States", "North America"},
		{"CA", "Canada", "North America"},
		{"MX", "Mexico", "North America"},
		{"BR", "Brazil", "South America"},
		{"AR", "Argentina", "South America"},
		{"GB", "United Kingdom", "Europe"},
		{"FR", "France", "Europe"},
		{"DE", "Germany", "Europe"},
		{"IT", "Italy", "Europe"},
		{"ES", "Spain", "Europe"},
		{"JP", "Japan", "Asia"},
		{"CN", "China", "Asia"},
		{"IN", "India", "Asia"},
		{"TH", "Thailand", "Asia"},
		{"AU", "Australia", "Oceania"},
		{"NZ", "New Zealand", "Oceania"},
		{"ZA", "South Africa", "Africa"},
		{"EG", "Egypt", "Africa"},
		{"KE", "Kenya", "Africa"},
		{"MA", "Morocco", "Africa"},
	})
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.countries)
}

// Countries：副本
func (c *Catalog) Countries() []Country {
	if c == nil {
		return nil
	}
	return append([]Country(nil), c.countries...)
}

func (c *Catalog) Lookup(code identity.Code) (Country, bool) {
	if c == nil {
		return Country{}, false
	}
	i, ok := c.byCode[code]
	if !ok {
		return Country{}, false
	}
	return c.countries[i], true
}

// Label：目录名称优先，缺失时使用几何记录自带的名称
func (c *Catalog) Label(code identity.Code, fallback string) string {
	if ct, ok := c.Lookup(code); ok && ct.Name != "" {
		return ct.Name
	}
	return fallback
}

// Continents：按首次出现顺序
func (c *Catalog) Continents() []string {
	if c == nil {
		return nil
	}
	seen := map[string]bool{}
	var out []string
	for _, ct := range c.countries {
		if ct.Continent == "" || seen[ct.Continent] {
			continue
		}
		seen[ct.Continent] = true
		out = append(out, ct.Continent)
	}
	return out
}

// InContinent：某大洲的国家（目录顺序）
func (c *Catalog) InContinent(continent string) []Country {
	if c == nil {
		return nil
	}
	var out []Country
	for _, ct := range c.countries {
		if strings.EqualFold(ct.Continent, continent) {
			out = append(out, ct)
		}
	}
	return out
}
