package service

import "context"

// sibling 同级实体的 ID 与当前序号
type sibling struct {
	ID    string
	Order int
}

// spliceSiblings 将 movedID 从原位置移除后插入 target 下标（越界时夹取到 [0, n-1]）
// siblings 需已按 (序号, 创建时间, ID) 排序；movedID 不存在时返回 false
func spliceSiblings(siblings []sibling, movedID string, target int) ([]sibling, bool) {
	from := -1
	for i, s := range siblings {
		if s.ID == movedID {
			from = i
			break
		}
	}
	if from < 0 {
		return nil, false
	}

	moved := siblings[from]
	rest := make([]sibling, 0, len(siblings))
	rest = append(rest, siblings[:from]...)
	rest = append(rest, siblings[from+1:]...)

	if target < 0 {
		target = 0
	}
	if target > len(rest) {
		target = len(rest)
	}

	out := make([]sibling, 0, len(siblings))
	out = append(out, rest[:target]...)
	out = append(out, moved)
	out = append(out, rest[target:]...)
	return out, true
}

// resequence 按当前排列写回连续序号 base, base+1, ...，仅更新发生变化的记录
func resequence(ctx context.Context, siblings []sibling, base int, update func(ctx context.Context, id string, order int) error) error {
	for i, s := range siblings {
		want := base + i
		if s.Order == want {
			continue
		}
		if err := update(ctx, s.ID, want); err != nil {
			return err
		}
	}
	return nil
}
