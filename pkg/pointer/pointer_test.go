// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pointer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/authd/pkg/pointer"
)

func TestTo_CopiesValue(t *testing.T) {
	name := "Alice"
	p := pointer.To(name)
	name = "Bob"

	assert.Equal(t, "Alice", *p)
}

func TestVal(t *testing.T) {
	var missing *string
	assert.Equal(t, "", pointer.Val(missing))
	assert.Equal(t, "nonce", pointer.Val(pointer.To("nonce")))
	assert.Equal(t, int64(0), pointer.Val[int64](nil))
}
