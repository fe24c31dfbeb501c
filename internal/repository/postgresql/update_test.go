package postgresql

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildUpdate(t *testing.T) {
	sql, args := buildUpdate("devices", map[string]interface{}{
		"status": "inactive",
		"name":   "Lobby",
	})
	assert.Equal(t, "UPDATE devices SET name = $1, status = $2, updated_at = NOW()", sql)
	assert.Equal(t, []interface{}{"Lobby", "inactive"}, args)
}
