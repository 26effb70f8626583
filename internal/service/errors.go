package service

import pkgerrors "github.com/artisenpaiii/liftlog/pkg/errors"

// ── 业务错误 ──
// Message 直接返回给客户端，Code 与响应体 code 字段一致

var (
	ErrInvalidCredentials = pkgerrors.New(pkgerrors.KindUnauthorized, 11001, "invalid_credentials", "Invalid credentials")
	ErrEmailTaken         = pkgerrors.NewField(pkgerrors.KindConflict, 11002, "email_taken", "email", "Email already registered")
	ErrUsernameTaken      = pkgerrors.NewField(pkgerrors.KindConflict, 11003, "username_taken", "username", "Username already taken")
	ErrUserNotFound       = pkgerrors.New(pkgerrors.KindNotFound, 11004, "user_not_found", "User not found")
	ErrPasswordTooLong    = pkgerrors.NewField(pkgerrors.KindValidation, 11005, "password_too_long", "password", "Password must be at most 72 bytes")

	ErrProgramNotFound    = pkgerrors.New(pkgerrors.KindNotFound, 12001, "program_not_found", "Program not found")
	ErrInvalidExportStart = pkgerrors.NewField(pkgerrors.KindValidation, 12002, "invalid_start", "start", "Start date must be formatted as YYYY-MM-DD")

	ErrBlockNotFound = pkgerrors.New(pkgerrors.KindNotFound, 13001, "block_not_found", "Block not found")
	ErrWeekNotFound  = pkgerrors.New(pkgerrors.KindNotFound, 14001, "week_not_found", "Week not found")

	ErrDayNotFound    = pkgerrors.New(pkgerrors.KindNotFound, 15001, "day_not_found", "Day not found")
	ErrColumnNotFound = pkgerrors.New(pkgerrors.KindNotFound, 15002, "column_not_found", "Column not found")
	ErrRowNotFound    = pkgerrors.New(pkgerrors.KindNotFound, 15003, "row_not_found", "Row not found")
	ErrCellNotFound   = pkgerrors.New(pkgerrors.KindNotFound, 15004, "cell_not_found", "Cell not found")
	ErrColumnMismatch = pkgerrors.NewField(pkgerrors.KindValidation, 15005, "column_mismatch", "columnId", "Row and column belong to different days")
)
