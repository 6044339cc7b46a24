// 包 visited：已访问国家集合的只读快照与 toggleVisited 意图的执行
// 背景：集合由外部资源持有（visited-countries REST 接口）；地图只读取快照并发出意图，宿主在此执行增删后重新渲染。
// 约束：不做重试；目录中不存在的代码被忽略。
package visited

import (
	"context"
	"errors"
	"sort"

	"been-map/internal/catalog"
	"been-map/internal/identity"
)

var ErrUnknownCountry = errors.New("visited: country not in catalog")

// Set：不可变快照
type Set struct {
	m map[identity.Code]struct{}
}

func NewSet(codes ...identity.Code) Set {
	m := make(map[identity.Code]struct{}, len(codes))
	for _, c := range codes {
		if c != identity.Unresolvable {
			m[c] = struct{}{}
		}
	}
	return Set{m: m}
}

func (s Set) Has(c identity.Code) bool {
	_, ok := s.m[c]
	return ok
}

func (s Set) Len() int { return len(s.m) }

// Codes：按字母序
func (s Set) Codes() []identity.Code {
	out := make([]identity.Code, 0, len(s.m))
	for c := range s.m {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Backend：已访问集合的持有方
type Backend interface {
	Snapshot(ctx context.Context) (Set, error)
	Add(ctx context.Context, c catalog.Country) error
	Remove(ctx context.Context, code identity.Code) error
}
