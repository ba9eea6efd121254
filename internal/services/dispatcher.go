package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/pandeptwidyaop/hostbridge/internal/dialog"
	"github.com/pandeptwidyaop/hostbridge/internal/metrics"
	"github.com/pandeptwidyaop/hostbridge/internal/models"
	"github.com/pandeptwidyaop/hostbridge/internal/system"
)

// Dispatcher-level error kinds.
const (
	KindUnknownCall system.Kind = "unknown_call"
	KindInvalidArgs system.Kind = "invalid_args"
)

// Invocation is one call as received from a transport.
type Invocation struct {
	ID        string
	Call      string
	Args      json.RawMessage
	Transport string
	ClientIP  string
}

// Recorder persists a summary of each invocation.
type Recorder interface {
	Record(entry models.AuditEntry) error
}

// MetricsFunc returns a host resource snapshot.
type MetricsFunc func(ctx context.Context) (*metrics.SystemMetrics, error)

type callFunc func(ctx context.Context, args json.RawMessage) (any, error)

// Dispatcher maps call names to host operations.
type Dispatcher struct {
	sys      *system.Service
	app      *AppInfo
	saver    dialog.Saver
	metrics  MetricsFunc
	recorder Recorder
	calls    map[string]callFunc
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithRecorder attaches an audit recorder.
func WithRecorder(r Recorder) DispatcherOption {
	return func(d *Dispatcher) {
		d.recorder = r
	}
}

// WithMetrics replaces the metrics source.
func WithMetrics(fn MetricsFunc) DispatcherOption {
	return func(d *Dispatcher) {
		d.metrics = fn
	}
}

// NewDispatcher creates a Dispatcher. A nil saver behaves as dialog.Headless.
func NewDispatcher(sys *system.Service, app *AppInfo, saver dialog.Saver, opts ...DispatcherOption) *Dispatcher {
	if saver == nil {
		saver = dialog.Headless{}
	}
	d := &Dispatcher{
		sys:     sys,
		app:     app,
		saver:   saver,
		metrics: metrics.GetSystemMetricsWithContext,
	}
	for _, opt := range opts {
		opt(d)
	}

	d.calls = map[string]callFunc{
		"system_get_home_dir":         d.getHomeDir,
		"system_execute_command":      d.executeCommand,
		"system_read_file":            d.readFile,
		"system_write_file":           d.writeFile("system_write_file"),
		"system_file_exists":          d.fileExists,
		"system_backup_file":          d.backupFile,
		"system_restore_file":         d.restoreFile,
		"system_get_info":             d.getInfo,
		"system_get_file_size":        d.getFileSize,
		"system_get_allowed_commands": d.allowedCommands,
		"system_get_metrics":          d.getMetrics,
		"get_app_version":             d.appVersion,
		"get_app_data_dir":            d.appDataDir,
		"show_save_dialog":            d.showSaveDialog,
		"write_text_file":             d.writeFile("write_text_file"),
	}
	return d
}

// Calls returns the registered call names, sorted.
func (d *Dispatcher) Calls() []string {
	names := make([]string, 0, len(d.calls))
	for name := range d.calls {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether name is a registered call.
func (d *Dispatcher) Has(name string) bool {
	_, ok := d.calls[name]
	return ok
}

// Invoke runs one call and never panics on bad input; every failure is
// reported in the response.
func (d *Dispatcher) Invoke(ctx context.Context, inv Invocation) models.InvokeResponse {
	start := time.Now()

	var (
		data any
		err  error
	)
	if fn, ok := d.calls[inv.Call]; ok {
		data, err = fn(ctx, inv.Args)
	} else {
		err = &system.Error{Kind: KindUnknownCall, Op: inv.Call, Msg: fmt.Sprintf("Unknown command '%s'", inv.Call)}
	}

	resp := models.InvokeResponse{ID: inv.ID, OK: err == nil, Data: data}
	if err != nil {
		resp.Data = nil
		resp.Error = err.Error()
		resp.Kind = string(system.KindOf(err))
	}

	elapsed := time.Since(start)
	event := log.Debug()
	if err != nil {
		event = log.Warn().Str("kind", resp.Kind).Str("error", resp.Error)
	}
	event.Str("call", inv.Call).
		Str("id", inv.ID).
		Str("transport", inv.Transport).
		Dur("duration", elapsed).
		Bool("ok", resp.OK).
		Msg("invocation")

	if d.recorder != nil {
		entry := models.AuditEntry{
			ID:         uuid.NewString(),
			RequestID:  inv.ID,
			Call:       inv.Call,
			Transport:  inv.Transport,
			Success:    resp.OK,
			ErrorKind:  resp.Kind,
			Error:      resp.Error,
			ClientIP:   inv.ClientIP,
			DurationMS: elapsed.Milliseconds(),
			CreatedAt:  start,
		}
		if recErr := d.recorder.Record(entry); recErr != nil {
			log.Error().Err(recErr).Str("call", inv.Call).Msg("failed to record invocation")
		}
	}

	return resp
}

type pathArgs struct {
	Path *string `json:"path"`
}

type writeArgs struct {
	Path    *string `json:"path"`
	Content *string `json:"content"`
}

type executeArgs struct {
	Cmd  *string  `json:"cmd"`
	Args []string `json:"args"`
}

type restoreArgs struct {
	BackupPath   *string `json:"backupPath"`
	OriginalPath *string `json:"originalPath"`
}

type saveDialogArgs struct {
	DefaultPath *string `json:"defaultPath"`
}

func decodeArgs(call string, raw json.RawMessage, v any) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		raw = []byte("{}")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return &system.Error{Kind: KindInvalidArgs, Op: call, Msg: "Invalid arguments", Err: err}
	}
	return nil
}

func missingArg(call, key string) error {
	return &system.Error{
		Kind: KindInvalidArgs,
		Op:   call,
		Msg:  fmt.Sprintf("Invalid arguments: missing required key '%s'", key),
	}
}

func (d *Dispatcher) getHomeDir(context.Context, json.RawMessage) (any, error) {
	return d.sys.GetHomeDirectory()
}

func (d *Dispatcher) executeCommand(ctx context.Context, raw json.RawMessage) (any, error) {
	const call = "system_execute_command"
	var a executeArgs
	if err := decodeArgs(call, raw, &a); err != nil {
		return nil, err
	}
	if a.Cmd == nil {
		return nil, missingArg(call, "cmd")
	}
	if a.Args == nil {
		a.Args = []string{}
	}
	return d.sys.ExecuteCommand(ctx, *a.Cmd, a.Args)
}

func (d *Dispatcher) readFile(_ context.Context, raw json.RawMessage) (any, error) {
	const call = "system_read_file"
	var a pathArgs
	if err := decodeArgs(call, raw, &a); err != nil {
		return nil, err
	}
	if a.Path == nil {
		return nil, missingArg(call, "path")
	}
	return d.sys.ReadFile(*a.Path)
}

// writeFile serves both write calls; call names the one in errors.
func (d *Dispatcher) writeFile(call string) callFunc {
	return func(_ context.Context, raw json.RawMessage) (any, error) {
		var a writeArgs
		if err := decodeArgs(call, raw, &a); err != nil {
			return nil, err
		}
		if a.Path == nil {
			return nil, missingArg(call, "path")
		}
		if a.Content == nil {
			return nil, missingArg(call, "content")
		}
		return nil, d.sys.WriteFile(*a.Path, *a.Content)
	}
}

func (d *Dispatcher) fileExists(_ context.Context, raw json.RawMessage) (any, error) {
	const call = "system_file_exists"
	var a pathArgs
	if err := decodeArgs(call, raw, &a); err != nil {
		return nil, err
	}
	if a.Path == nil {
		return nil, missingArg(call, "path")
	}
	return d.sys.FileExists(*a.Path), nil
}

func (d *Dispatcher) backupFile(_ context.Context, raw json.RawMessage) (any, error) {
	const call = "system_backup_file"
	var a pathArgs
	if err := decodeArgs(call, raw, &a); err != nil {
		return nil, err
	}
	if a.Path == nil {
		return nil, missingArg(call, "path")
	}
	return d.sys.BackupFile(*a.Path)
}

func (d *Dispatcher) restoreFile(_ context.Context, raw json.RawMessage) (any, error) {
	const call = "system_restore_file"
	var a restoreArgs
	if err := decodeArgs(call, raw, &a); err != nil {
		return nil, err
	}
	if a.BackupPath == nil {
		return nil, missingArg(call, "backupPath")
	}
	if a.OriginalPath == nil {
		return nil, missingArg(call, "originalPath")
	}
	return nil, d.sys.RestoreFile(*a.BackupPath, *a.OriginalPath)
}

func (d *Dispatcher) getInfo(ctx context.Context, _ json.RawMessage) (any, error) {
	return d.sys.GetSystemInfo(ctx), nil
}

func (d *Dispatcher) getFileSize(_ context.Context, raw json.RawMessage) (any, error) {
	const call = "system_get_file_size"
	var a pathArgs
	if err := decodeArgs(call, raw, &a); err != nil {
		return nil, err
	}
	if a.Path == nil {
		return nil, missingArg(call, "path")
	}
	return d.sys.GetFileSize(*a.Path)
}

func (d *Dispatcher) allowedCommands(context.Context, json.RawMessage) (any, error) {
	return system.AllowedCommands(), nil
}

func (d *Dispatcher) getMetrics(ctx context.Context, _ json.RawMessage) (any, error) {
	m, err := d.metrics(ctx)
	if err != nil {
		return nil, &system.Error{Kind: system.KindInternal, Op: "system_get_metrics", Msg: "Failed to collect metrics", Err: err}
	}
	return m, nil
}

func (d *Dispatcher) appVersion(context.Context, json.RawMessage) (any, error) {
	return d.app.Version(), nil
}

func (d *Dispatcher) appDataDir(context.Context, json.RawMessage) (any, error) {
	return d.app.DataDir()
}

func (d *Dispatcher) showSaveDialog(ctx context.Context, raw json.RawMessage) (any, error) {
	const call = "show_save_dialog"
	var a saveDialogArgs
	if err := decodeArgs(call, raw, &a); err != nil {
		return nil, err
	}
	if a.DefaultPath == nil {
		return nil, missingArg(call, "defaultPath")
	}

	path, ok, err := d.saver.SaveFile(ctx, *a.DefaultPath)
	if err != nil {
		return nil, &system.Error{Kind: system.KindInternal, Op: call, Msg: "Failed to show save dialog", Err: err}
	}
	if !ok {
		return (*string)(nil), nil
	}
	return &path, nil
}
