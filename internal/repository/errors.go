package repository

import (
	"errors"

	"github.com/lib/pq"
)

// uniqueViolationCode はPostgreSQLの一意制約違反のSQLSTATE。
const uniqueViolationCode = "23505"

// IsUniqueViolation はエラーが一意制約違反かどうかを判定する。
// フォロー操作の冪等化など、「既に存在する」を正常系として扱う
// 呼び出し側がこの判定に依存する。
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == uniqueViolationCode
	}
	return false
}
