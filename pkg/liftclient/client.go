// Package liftclient 是 LiftLog HTTP API 的 Go 客户端，
// 并提供规范化的本地状态（Store）、乐观更新编辑器（Editor）与防抖自动保存（Autosaver）。
package liftclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/artisenpaiii/liftlog/internal/dto"
)

// APIError 服务端返回的错误响应
type APIError struct {
	Status  int    `json:"-"`
	Message string `json:"error"`
	Key     string `json:"key"`
	Field   string `json:"field"`
	Code    int    `json:"code"`
}

func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("liftlog: %d %s (%s: %s)", e.Status, e.Message, e.Key, e.Field)
	}
	return fmt.Sprintf("liftlog: %d %s (%s)", e.Status, e.Message, e.Key)
}

// Client LiftLog API 客户端，可并发使用
type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

// Option 客户端选项
type Option func(*Client)

// WithHTTPClient 使用自定义 http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken 预置 Bearer Token
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New 创建客户端，baseURL 形如 http://localhost:3001
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Token 当前 Bearer Token
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetToken 设置 Bearer Token，空字符串表示匿名
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// ── 认证 ──

// Register 注册并保存返回的 Token
func (c *Client) Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error) {
	var out dto.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", req, &out); err != nil {
		return nil, err
	}
	c.SetToken(out.Token)
	return &out, nil
}

// Login 登录并保存返回的 Token
func (c *Client) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	var out dto.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", req, &out); err != nil {
		return nil, err
	}
	c.SetToken(out.Token)
	return &out, nil
}

func (c *Client) Profile(ctx context.Context) (*dto.UserResponse, error) {
	var out dto.ProfileResponse
	if err := c.do(ctx, http.MethodGet, "/api/auth/profile", nil, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// Logout 登出并清除本地 Token
func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil); err != nil {
		return err
	}
	c.SetToken("")
	return nil
}

// ── 训练计划 ──

func (c *Client) CreateProgram(ctx context.Context, name string) (string, error) {
	var out dto.IDResponse
	if err := c.do(ctx, http.MethodPost, "/api/programs/new", dto.CreateProgramRequest{Name: name}, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

func (c *Client) ListPrograms(ctx context.Context) ([]dto.ProgramSummary, error) {
	var out dto.ProgramListResponse
	if err := c.do(ctx, http.MethodGet, "/api/programs", nil, &out); err != nil {
		return nil, err
	}
	return out.Programs, nil
}

func (c *Client) GetProgram(ctx context.Context, id string) (*dto.ProgramTree, error) {
	var out dto.ProgramResponse
	if err := c.do(ctx, http.MethodGet, "/api/programs/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out.Program, nil
}

func (c *Client) RenameProgram(ctx context.Context, id, name string) (*dto.ProgramTree, error) {
	var out dto.ProgramResponse
	if err := c.do(ctx, http.MethodPatch, "/api/programs/"+url.PathEscape(id), dto.RenameProgramRequest{Name: name}, &out); err != nil {
		return nil, err
	}
	return &out.Program, nil
}

func (c *Client) DeleteProgram(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/programs/"+url.PathEscape(id), nil, nil)
}

// ExportXLSX 下载 Excel 导出
func (c *Client) ExportXLSX(ctx context.Context, id string) ([]byte, error) {
	return c.download(ctx, "/api/programs/"+url.PathEscape(id)+"/export.xlsx")
}

// ExportICS 下载日历导出，start 为 YYYY-MM-DD
func (c *Client) ExportICS(ctx context.Context, id, start string) ([]byte, error) {
	q := url.Values{"start": {start}}
	return c.download(ctx, "/api/programs/"+url.PathEscape(id)+"/calendar.ics?"+q.Encode())
}

// ── 阶段 / 周 / 日 ──

func (c *Client) CreateBlock(ctx context.Context, programID, name string) (*dto.BlockTree, error) {
	var out dto.BlockResponse
	if err := c.do(ctx, http.MethodPost, "/api/blocks/new", dto.CreateBlockRequest{ProgramID: programID, Name: name}, &out); err != nil {
		return nil, err
	}
	return &out.Block, nil
}

func (c *Client) RenameBlock(ctx context.Context, id, name string) (*dto.BlockTree, error) {
	var out dto.BlockResponse
	if err := c.do(ctx, http.MethodPatch, "/api/blocks/"+url.PathEscape(id), dto.RenameBlockRequest{Name: name}, &out); err != nil {
		return nil, err
	}
	return &out.Block, nil
}

func (c *Client) ReorderBlock(ctx context.Context, id string, order int) ([]dto.BlockTree, error) {
	var out dto.BlockListResponse
	if err := c.do(ctx, http.MethodPatch, "/api/blocks/order", dto.ReorderBlockRequest{BlockID: id, Order: &order}, &out); err != nil {
		return nil, err
	}
	return out.Blocks, nil
}

func (c *Client) DeleteBlock(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/blocks/"+url.PathEscape(id), nil, nil)
}

func (c *Client) CreateWeek(ctx context.Context, blockID string) (*dto.WeekTree, error) {
	var out dto.WeekResponse
	if err := c.do(ctx, http.MethodPost, "/api/weeks/new", dto.CreateWeekRequest{BlockID: blockID}, &out); err != nil {
		return nil, err
	}
	return &out.Week, nil
}

func (c *Client) DeleteWeek(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/weeks/"+url.PathEscape(id), nil, nil)
}

func (c *Client) CreateDay(ctx context.Context, req dto.CreateDayRequest) (*dto.DayTree, error) {
	var out dto.DayResponse
	if err := c.do(ctx, http.MethodPost, "/api/days/new", req, &out); err != nil {
		return nil, err
	}
	return &out.Day, nil
}

func (c *Client) UpdateDay(ctx context.Context, req dto.UpdateDayRequest) (*dto.DayTree, error) {
	var out dto.DayResponse
	if err := c.do(ctx, http.MethodPut, "/api/days", req, &out); err != nil {
		return nil, err
	}
	return &out.Day, nil
}

func (c *Client) DeleteDay(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/days/"+url.PathEscape(id), nil, nil)
}

// ── 表格 ──

func (c *Client) AddColumn(ctx context.Context, dayID, name string) (*dto.ColumnResponse, error) {
	var out dto.ColumnEnvelope
	if err := c.do(ctx, http.MethodPost, "/api/days/column", dto.CreateColumnRequest{DayID: dayID, Name: name}, &out); err != nil {
		return nil, err
	}
	return &out.Column, nil
}

func (c *Client) RenameColumn(ctx context.Context, id, name string) (*dto.ColumnResponse, error) {
	var out dto.ColumnEnvelope
	if err := c.do(ctx, http.MethodPut, "/api/days/column", dto.RenameColumnRequest{ColumnID: id, Name: name}, &out); err != nil {
		return nil, err
	}
	return &out.Column, nil
}

func (c *Client) ReorderColumn(ctx context.Context, id string, order int) ([]dto.ColumnResponse, error) {
	var out dto.ColumnListResponse
	if err := c.do(ctx, http.MethodPatch, "/api/days/column/order", dto.ReorderColumnRequest{ColumnID: id, Order: &order}, &out); err != nil {
		return nil, err
	}
	return out.Columns, nil
}

func (c *Client) DeleteColumn(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/days/column/"+url.PathEscape(id), nil, nil)
}

func (c *Client) AddRow(ctx context.Context, dayID string) (*dto.RowResponse, error) {
	var out dto.RowEnvelope
	if err := c.do(ctx, http.MethodPost, "/api/days/row", dto.CreateRowRequest{DayID: dayID}, &out); err != nil {
		return nil, err
	}
	return &out.Row, nil
}

func (c *Client) ReorderRow(ctx context.Context, id string, order int) ([]dto.RowResponse, error) {
	var out dto.RowListResponse
	if err := c.do(ctx, http.MethodPatch, "/api/days/row/order", dto.ReorderRowRequest{RowID: id, Order: &order}, &out); err != nil {
		return nil, err
	}
	return out.Rows, nil
}

func (c *Client) DeleteRow(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/days/row/"+url.PathEscape(id), nil, nil)
}

func (c *Client) UpdateCell(ctx context.Context, id, value string) (*dto.CellResponse, error) {
	var out dto.CellEnvelope
	if err := c.do(ctx, http.MethodPut, "/api/days/cell", dto.UpdateCellRequest{CellID: id, Value: value}, &out); err != nil {
		return nil, err
	}
	return &out.Cell, nil
}

func (c *Client) UpsertCell(ctx context.Context, rowID, columnID, value string) (*dto.CellResponse, error) {
	var out dto.CellEnvelope
	req := dto.UpsertCellRequest{RowID: rowID, ColumnID: columnID, Value: value}
	if err := c.do(ctx, http.MethodPut, "/api/days/cell/upsert", req, &out); err != nil {
		return nil, err
	}
	return &out.Cell, nil
}

// ── 传输 ──

func (c *Client) newRequest(ctx context.Context, method, path string, in interface{}) (*http.Request, error) {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("liftlog: 编码请求失败: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// do 发送 JSON 请求；out 为 nil 时忽略响应体（204）
func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	req, err := c.newRequest(ctx, method, path, in)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("liftlog: 解析响应失败: %w", err)
	}
	return nil
}

func (c *Client) download(ctx context.Context, path string) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, decodeError(resp)
	}
	return io.ReadAll(resp.Body)
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(raw, apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
