package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// (trip_id, user_id) 的唯一索引带 WHERE user_id IS NOT NULL 谓词，
// conflict target 不重复这个谓词的话 Postgres 推断不出 arbiter 索引，
// 语句会在 plan 阶段直接报错。
func TestAcceptParticipantInsertRepeatsIndexPredicate(t *testing.T) {
	assert.Contains(t, acceptParticipantInsert,
		"ON CONFLICT (trip_id, user_id) WHERE user_id IS NOT NULL DO NOTHING")
}
