package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daily-bible-bot/internal/models"
	"daily-bible-bot/internal/storage"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestPlanCommand(t *testing.T) {
	out, _, err := run(t, "plan", "--plan", "psalms_in_one_month", "--day", "29", "--days", "3")
	require.NoError(t, err)
	assert.Equal(t, "day 29/30: Psalms 141-145\nday 30/30: Psalms 146-150\nday 31: plan complete\n", out)
}

func TestPlanCommandUnknownPlan(t *testing.T) {
	out, errOut, err := run(t, "plan", "--plan", "nope")
	require.NoError(t, err)
	assert.Contains(t, errOut, `unknown plan "nope"`)
	assert.Equal(t, "day 1/365: Genesis 1-3\n", out)
}

func TestPlanCommandInvalidDay(t *testing.T) {
	_, _, err := run(t, "plan", "--day", "0")
	assert.Error(t, err)
}

func TestForgetCommand(t *testing.T) {
	t.Chdir(t.TempDir())
	dbPath := filepath.Join(t.TempDir(), "bot.db")
	t.Setenv("DB_PATH", dbPath)

	db, err := storage.New(dbPath)
	require.NoError(t, err)
	require.NoError(t, db.UpsertUser(&models.User{UserID: 12, ChatID: 12, PlanKey: "bible_in_one_year", StartDate: "2026-10-19"}))
	require.NoError(t, db.Close())

	out, _, err := run(t, "forget", "12")
	require.NoError(t, err)
	assert.Equal(t, "user 12 removed\n", out)

	db, err = storage.New(dbPath)
	require.NoError(t, err)
	defer db.Close()
	u, err := db.GetUser(12)
	require.NoError(t, err)
	assert.Nil(t, u)

}

func TestCommandErrorsArePrinted(t *testing.T) {
	_, errOut, err := run(t, "forget", "abc")
	require.Error(t, err)
	assert.Contains(t, errOut, "Error:")
	assert.Contains(t, errOut, "abc")

	_, errOut, err = run(t, "plan", "--day", "0")
	require.Error(t, err)
	assert.NotEmpty(t, errOut)
}
