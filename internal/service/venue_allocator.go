package service

import (
	"math/rand"
	"sort"
)

// ── 考场分配 ────────────────────────────────────────────────
//
// 每个 (日期, 时段) 桶内，按固定容量贪心地给课程分一间或多间
// 考场。占用状态只在一次生成运行内有效，随运行结束丢弃；
// 分配顺序上游保证串行，同一桶不会被并发写。
//
// 候选考场在等价时故意随机选取（避免总是压满低编号考场）；
// 随机源通过 shuffle 注入，测试可固定或关闭。输出一律按考场
// 编号升序排布，随机只影响选了哪些考场，不影响展示顺序。
// ─────────────────────────────────────────────────────────────

// SeatingStatus 一门课程的安置结果状态
type SeatingStatus string

const (
	// SeatingFull 全部学生已安置
	SeatingFull SeatingStatus = "fully_seated"
	// SeatingPartial 部分安置，剩余人数记入 Shortage（告警态，非错误）
	SeatingPartial SeatingStatus = "partially_seated"
	// SeatingNone 桶内已无任何剩余容量
	SeatingNone SeatingStatus = "unseated"
)

// occupancyKey 占用桶键。不可解析日期的行共用空串日期桶。
type occupancyKey struct {
	date string // "2006-01-02"
	slot int    // 1..3
}

// VenueOccupancy 单次生成运行内的考场占用状态。
// 桶首次被访问时惰性建立；不跨运行共享，也绝不能跨运行共享。
type VenueOccupancy struct {
	seats map[occupancyKey]map[int]int // 桶 → 考场 → 已坐人数
}

// NewVenueOccupancy 创建空占用状态（每次生成运行一个）
func NewVenueOccupancy() *VenueOccupancy {
	return &VenueOccupancy{seats: make(map[occupancyKey]map[int]int)}
}

// bucket 取出（必要时初始化）一个日期/时段桶
func (o *VenueOccupancy) bucket(date string, slot int, rooms []int) map[int]int {
	key := occupancyKey{date: date, slot: slot}
	b, ok := o.seats[key]
	if !ok {
		b = make(map[int]int, len(rooms))
		for _, r := range rooms {
			b[r] = 0
		}
		o.seats[key] = b
	}
	return b
}

// Seated 查询某桶内某考场的已坐人数（报表/测试用）
func (o *VenueOccupancy) Seated(date string, slot, room int) int {
	if b, ok := o.seats[occupancyKey{date: date, slot: slot}]; ok {
		return b[room]
	}
	return 0
}

// RoomAssignment 一间考场的安置明细
type RoomAssignment struct {
	RoomID  int    `json:"room_id"`
	Teacher string `json:"teacher,omitempty"` // 监考教师（单教师全场同名，多教师轮转）
	Seated  int    `json:"seated"`
}

// AllocationResult 一门课程的考场分配结果。
// Shortage 是结构化字段，人类可读的提示文案由渲染层派生。
type AllocationResult struct {
	Rooms    []RoomAssignment `json:"rooms"`
	Shortage int              `json:"shortage"` // 容量耗尽后未安置的人数
	Status   SeatingStatus    `json:"status"`
}

// VenueAllocator 容量约束下的多考场分配器
type VenueAllocator struct {
	rooms    []int
	capacity int
	shuffle  func([]int)
}

// NewVenueAllocator 创建分配器。shuffle 为 nil 时使用 math/rand；
// 传入空操作函数即可得到固定选取顺序。
func NewVenueAllocator(rooms []int, capacity int, shuffle func([]int)) *VenueAllocator {
	if shuffle == nil {
		shuffle = func(s []int) {
			rand.Shuffle(len(s), func(i, j int) { s[i], s[j] = s[j], s[i] })
		}
	}
	return &VenueAllocator{rooms: rooms, capacity: capacity, shuffle: shuffle}
}

// Allocate 给一门课程分配考场并占座。
//
// 同一桶内的调用必须串行；对占用状态的修改在本次调用内一次性
// 完成，下一门课程看到的是已更新的剩余容量。
func (a *VenueAllocator) Allocate(occ *VenueOccupancy, date string, slot, students int, teachers []string) AllocationResult {
	b := occ.bucket(date, slot, a.rooms)

	// 仅剩余容量 > 0 的考场参与候选，随后打乱选取顺序
	var candidates []int
	for _, r := range a.rooms {
		if b[r] < a.capacity {
			candidates = append(candidates, r)
		}
	}
	a.shuffle(candidates)

	// 贪心填充：每间坐 min(剩余学生, 剩余座位)
	remaining := students
	var assigned []RoomAssignment
	for remaining > 0 && len(candidates) > 0 {
		room := candidates[0]
		candidates = candidates[1:]

		free := a.capacity - b[room]
		take := remaining
		if free < take {
			take = free
		}
		if take > 0 {
			assigned = append(assigned, RoomAssignment{RoomID: room, Seated: take})
			b[room] += take
			remaining -= take
		}
	}

	if len(assigned) == 0 {
		return AllocationResult{Shortage: remaining, Status: SeatingNone}
	}

	// 展示按考场编号升序；监考绑定在升序序列上做
	sort.Slice(assigned, func(i, j int) bool { return assigned[i].RoomID < assigned[j].RoomID })
	switch {
	case len(teachers) == 1:
		for i := range assigned {
			assigned[i].Teacher = teachers[0]
		}
	case len(teachers) > 1:
		for i := range assigned {
			assigned[i].Teacher = teachers[i%len(teachers)]
		}
	}

	status := SeatingFull
	if remaining > 0 {
		status = SeatingPartial
	}
	return AllocationResult{Rooms: assigned, Shortage: remaining, Status: status}
}
