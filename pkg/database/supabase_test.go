package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIlikeEmailEscapesPatternMetacharacters(t *testing.T) {
	// 下划线转义后不再是单字符通配符
	assert.Equal(t, "email=ilike.john%5C_doe%40x.com", ilikeEmail("email", "john_doe@x.com"))

	// % 和 \ 同样转义
	assert.Equal(t, "email=ilike.a%5C%25b%40x.com", ilikeEmail("email", "a%b@x.com"))
	assert.Equal(t, "email=ilike.a%5C%5Cb%40x.com", ilikeEmail("email", `a\b@x.com`))

	// 普通邮箱不受影响
	assert.Equal(t, "email=ilike.alice%40example.com", ilikeEmail("email", "alice@example.com"))
}
