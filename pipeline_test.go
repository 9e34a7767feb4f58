package qail

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountPlaceholdersCountsDistinct(t *testing.T) {
	assert.Equal(t, 2, countPlaceholders(`SELECT * FROM "users" WHERE "id" = $1 AND "org" = $2`))
}

func TestCountPlaceholdersZeroWhenNone(t *testing.T) {
	assert.Equal(t, 0, countPlaceholders(`SELECT 1`))
}

func TestCountPlaceholdersIgnoresDollarWithoutDigit(t *testing.T) {
	assert.Equal(t, 0, countPlaceholders(`SELECT '$a'`))
}

func TestCountPlaceholdersIgnoresRepeats(t *testing.T) {
	assert.Equal(t, 1, countPlaceholders(`"a" = $1 OR "b" = $1`))
}

func TestCountPlaceholdersMultiDigit(t *testing.T) {
	assert.Equal(t, 1, countPlaceholders(`"a" = $12`))
}
