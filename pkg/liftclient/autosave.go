package liftclient

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultAutosaveDelay 输入停止后触发保存的等待时间
const DefaultAutosaveDelay = 500 * time.Millisecond

// SaveFunc 持久化一个字段值
type SaveFunc func(ctx context.Context, value string) error

// Autosaver 单个可编辑字段的防抖自动保存
//
//   - Change 只更新本地值并重置计时器，计时器到期时保存
//   - Blur 立即保存（值为空白时跳过）
//   - Escape 恢复为最近一次保存的值并取消待保存
//   - Enter 等同于 Blur
//
// 与最近保存值相同的值不会再次保存。保存失败时最近保存值保持不变，错误写入日志。
// 连续编辑可能产生并发的保存请求，后发请求不保证后完成。
type Autosaver struct {
	save     SaveFunc
	delay    time.Duration
	blurOnly bool
	logger   *zap.Logger

	mu        sync.Mutex
	value     string
	lastSaved string
	timer     *time.Timer
	pending   sync.WaitGroup
}

// AutosaveOption 自动保存选项
type AutosaveOption func(*Autosaver)

// WithAutosaveDelay 设置防抖间隔
func WithAutosaveDelay(d time.Duration) AutosaveOption {
	return func(a *Autosaver) { a.delay = d }
}

// WithSaveOnlyOnBlur 只在 Blur / Enter 时保存
func WithSaveOnlyOnBlur() AutosaveOption {
	return func(a *Autosaver) { a.blurOnly = true }
}

// WithAutosaveLogger 设置保存失败时使用的日志器
func WithAutosaveLogger(logger *zap.Logger) AutosaveOption {
	return func(a *Autosaver) { a.logger = logger }
}

// NewAutosaver 创建自动保存器，initial 视为已保存的值
func NewAutosaver(initial string, save SaveFunc, opts ...AutosaveOption) *Autosaver {
	a := &Autosaver{
		save:      save,
		delay:     DefaultAutosaveDelay,
		logger:    zap.NewNop(),
		value:     initial,
		lastSaved: initial,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Value 当前本地值
func (a *Autosaver) Value() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.value
}

// LastSaved 最近一次成功保存的值
func (a *Autosaver) LastSaved() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastSaved
}

// Reset 外部数据变化时同步本地值与已保存值，并取消待保存
func (a *Autosaver) Reset(value string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopTimer()
	a.value = value
	a.lastSaved = value
}

// Change 记录一次输入
func (a *Autosaver) Change(value string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.value = value
	if a.blurOnly {
		return
	}

	a.stopTimer()
	a.pending.Add(1)
	a.timer = time.AfterFunc(a.delay, func() {
		defer a.pending.Done()
		a.persist(context.Background(), value)
	})
}

// Blur 字段失去焦点：取消计时器，非空白值立即保存
func (a *Autosaver) Blur(ctx context.Context) error {
	a.mu.Lock()
	a.stopTimer()
	value := a.value
	a.mu.Unlock()

	if strings.TrimSpace(value) == "" {
		return nil
	}
	return a.persist(ctx, value)
}

// Enter 立即提交
func (a *Autosaver) Enter(ctx context.Context) error {
	return a.Blur(ctx)
}

// Escape 放弃未保存的输入
func (a *Autosaver) Escape() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopTimer()
	a.value = a.lastSaved
}

// Stop 取消待保存并等待已触发的保存结束
func (a *Autosaver) Stop() {
	a.mu.Lock()
	a.stopTimer()
	a.mu.Unlock()
	a.pending.Wait()
}

// stopTimer 调用方持有 a.mu
func (a *Autosaver) stopTimer() {
	if a.timer != nil && a.timer.Stop() {
		a.pending.Done()
	}
	a.timer = nil
}

func (a *Autosaver) persist(ctx context.Context, value string) error {
	a.mu.Lock()
	if value == a.lastSaved {
		a.mu.Unlock()
		return nil
	}
	a.mu.Unlock()

	if err := a.save(ctx, value); err != nil {
		a.logger.Warn("自动保存失败", zap.Error(err))
		return err
	}

	a.mu.Lock()
	a.lastSaved = value
	a.mu.Unlock()
	return nil
}
