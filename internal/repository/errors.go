package repository

import (
	"errors"

	"github.com/lib/pq"
)

// ErrDuplicate はDBのユニーク制約違反を表すセンチネルエラー。
// どのリソースの重複かは呼び出し側の操作文脈で判断する。
var ErrDuplicate = errors.New("duplicate key")

// pqUniqueViolation はPostgreSQLのunique_violationエラーコード。
const pqUniqueViolation = "23505"

// mapUniqueViolation はpqのユニーク制約違反をErrDuplicateに変換する。
// それ以外のエラーはそのまま返す。
func mapUniqueViolation(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		return ErrDuplicate
	}
	return err
}
