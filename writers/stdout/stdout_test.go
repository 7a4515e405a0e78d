package stdout

import (
	"bufio"
	"bytes"
	"context"
	"testing"

	"github.com/datazip-inc/olake-clubspeed/types"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStdout_WritesJSONLines(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	writer := &Stdout{out: &buf}
	require.NoError(t, writer.Setup(types.NewStream("payments", "").Wrap(), nil))

	require.NoError(t, writer.Write(ctx, types.Record{"paymentId": float64(1), "payDate": "2020-01-01 00:00:00"}))
	state := types.NewState()
	state.SetBookmark("payments", "payDate", "2020-01-01 00:00:00")
	require.NoError(t, writer.WriteState(ctx, state))
	require.NoError(t, writer.Close(ctx))

	scanner := bufio.NewScanner(&buf)
	var lines []map[string]any
	for scanner.Scan() {
		line := map[string]any{}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &line))
		lines = append(lines, line)
	}
	require.Len(t, lines, 2)

	assert.Equal(t, "RECORD", lines[0]["type"])
	assert.Equal(t, "payments", lines[0]["stream"])
	assert.Equal(t, map[string]any{"paymentId": float64(1), "payDate": "2020-01-01 00:00:00"}, lines[0]["record"])
	assert.NotEmpty(t, lines[0]["time_extracted"])

	assert.Equal(t, "STATE", lines[1]["type"])
	assert.Equal(t, map[string]any{
		"bookmarks": map[string]any{"payments": map[string]any{"payDate": "2020-01-01 00:00:00"}},
	}, lines[1]["value"])
}

func TestStdout_Registered(t *testing.T) {
	writer := new(Stdout)
	assert.Equal(t, "STDOUT", writer.Type())
	assert.NoError(t, writer.GetConfigRef().Validate())
}
