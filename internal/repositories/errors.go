package repositories

import (
	"context"
	"errors"

	"credhub/internal/common"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// mapError normalizes driver failures into *common.QueryError. The backend
// message is kept verbatim.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, common.ErrNotConfigured) {
		return err
	}
	if _, ok := common.AsQueryError(err); ok {
		return err
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return &common.QueryError{Op: op, Message: "no rows returned", Kind: common.QueryKindNotFound, Err: err}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		qe := &common.QueryError{Op: op, Message: pgErr.Message, Code: pgErr.Code, Err: err}
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			qe.Kind = common.QueryKindConflict
		case pgerrcode.ForeignKeyViolation,
			pgerrcode.CheckViolation,
			pgerrcode.NotNullViolation,
			pgerrcode.InvalidTextRepresentation,
			pgerrcode.InvalidDatetimeFormat,
			pgerrcode.StringDataRightTruncationDataException:
			qe.Kind = common.QueryKindInvalid
		case pgerrcode.UndefinedTable, pgerrcode.UndefinedColumn:
			qe.Kind = common.QueryKindInvalid
		case pgerrcode.ConnectionException,
			pgerrcode.ConnectionDoesNotExist,
			pgerrcode.ConnectionFailure,
			pgerrcode.CannotConnectNow,
			pgerrcode.SQLClientUnableToEstablishSQLConnection,
			pgerrcode.AdminShutdown,
			pgerrcode.CrashShutdown,
			pgerrcode.TooManyConnections,
			pgerrcode.QueryCanceled:
			qe.Kind = common.QueryKindUnavailable
		}
		return qe
	}

	kind := common.QueryKindUnknown
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		kind = common.QueryKindUnavailable
	}
	return &common.QueryError{Op: op, Message: err.Error(), Kind: kind, Err: err}
}
