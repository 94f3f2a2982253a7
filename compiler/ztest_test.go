package compiler_test

import (
	"testing"

	"github.com/bullet-db/bql/ztest"
)

func TestZTest(t *testing.T) { ztest.Run(t, "ztests") }
