package adms

import (
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/attendance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAttLog(t *testing.T) {
	jakarta, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)

	body := strings.Join([]string{
		"1001\t2024-06-04 09:20:00\t0\t1\t0\t0",
		"1001\t2024-06-04 18:00:00\t1\t1",
		"1002\t2024-06-04 12:00:00\t2\t1",
		"",
		"1003\t2024-06-04 19:00:00\t5",
		"garbage",
		"1004\t04/06/2024 09:00\t0\t1",
		"1005\t2024-06-04 09:00:00\tx\t1",
		"\t2024-06-04 09:00:00\t0\t1\r",
	}, "\n")

	result, err := ParseAttLog(strings.NewReader(body), jakarta)
	require.NoError(t, err)

	require.Len(t, result.Records, 3)
	first := result.Records[0]
	assert.Equal(t, "1001", first.PIN)
	assert.Equal(t, attendance.PunchCheckIn, first.Kind)
	assert.True(t, first.Timestamp.Equal(time.Date(2024, 6, 4, 2, 20, 0, 0, time.UTC)))
	require.NotNil(t, first.VerifyMode)
	assert.Equal(t, 1, *first.VerifyMode)

	assert.Equal(t, attendance.PunchCheckOut, result.Records[1].Kind)
	assert.Equal(t, attendance.PunchCheckOut, result.Records[2].Kind)
	assert.Nil(t, result.Records[2].VerifyMode)

	assert.Equal(t, 1, result.Ignored)
	assert.Equal(t, []int{6, 7, 8, 9}, result.Malformed)
	assert.Equal(t, 8, result.Total())
}

func TestParseAttLog_OversizedLineIsMalformed(t *testing.T) {
	body := strings.Join([]string{
		"1001\t2024-06-04 09:00:00\t0\t1",
		"1002\t2024-06-04 09:05:00\t0\t1\t" + strings.Repeat("x", 3*maxLineLength),
		"1003\t2024-06-04 17:00:00\t1\t1",
	}, "\n")

	result, err := ParseAttLog(strings.NewReader(body), time.UTC)
	require.NoError(t, err)

	require.Len(t, result.Records, 2)
	assert.Equal(t, "1001", result.Records[0].PIN)
	assert.Equal(t, "1003", result.Records[1].PIN)
	assert.Equal(t, 3, result.Records[1].Line)
	assert.Equal(t, []int{2}, result.Malformed)
}

func TestKindFromStatus(t *testing.T) {
	tests := []struct {
		status int
		kind   attendance.PunchKind
		ok     bool
	}{
		{0, attendance.PunchCheckIn, true},
		{4, attendance.PunchCheckIn, true},
		{1, attendance.PunchCheckOut, true},
		{5, attendance.PunchCheckOut, true},
		{2, "", false},
		{3, "", false},
	}
	for _, tt := range tests {
		kind, ok := KindFromStatus(tt.status)
		assert.Equal(t, tt.ok, ok, "status %d", tt.status)
		assert.Equal(t, tt.kind, kind, "status %d", tt.status)
	}
}

func TestHandshakeReply(t *testing.T) {
	jakarta, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)

	reply := HandshakeReply("CQZ7231460001", jakarta, time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC))

	assert.True(t, strings.HasPrefix(reply, "GET OPTION FROM: CQZ7231460001\n"))
	assert.Contains(t, reply, "TimeZone=7\n")
	assert.Contains(t, reply, "TransFlag=TransData AttLog\n")
}

func TestAckReply(t *testing.T) {
	assert.Equal(t, "OK: 3", AckReply(3))
}
