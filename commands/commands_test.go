package commands

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/billbatista/expensebook/api"
	"github.com/billbatista/expensebook/client"
	"github.com/billbatista/expensebook/database/dbtest"
	"github.com/billbatista/expensebook/ledger"
	"github.com/billbatista/expensebook/money"
	"github.com/billbatista/expensebook/session"
	"github.com/billbatista/expensebook/user"
)

type cli struct {
	t       *testing.T
	server  string
	session string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	db := dbtest.New(t)
	issuer := session.NewIssuer("commands-test-secret-commands", time.Hour)
	accounts, err := user.NewService(user.NewRepository(db), issuer, bcrypt.MinCost)
	require.NoError(t, err)
	expenses := ledger.NewService(ledger.NewRepository(db), nil)
	router := api.NewRouter(api.NewHandler(accounts, expenses, db), api.RouterConfig{
		Verifier: issuer,
		Accounts: accounts,
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &cli{t: t, server: srv.URL, session: filepath.Join(t.TempDir(), "session.yaml")}
}

func (c *cli) run(args ...string) (string, error) {
	c.t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--server", c.server, "--session", c.session}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (c *cli) mustRun(args ...string) string {
	c.t.Helper()
	out, err := c.run(args...)
	require.NoError(c.t, err, out)
	return out
}

func TestCLI_Flow(t *testing.T) {
	c := newCLI(t)

	_, err := c.run("show")
	require.ErrorIs(t, err, client.ErrLoginRequired)

	out := c.mustRun("register", "--name", "alice", "--email", "a@x.com", "--password", "secret1")
	assert.Contains(t, out, "welcome, alice")

	out = c.mustRun("budget", "set", "1000")
	assert.Contains(t, out, "budget is now 1,000.00")

	out = c.mustRun("add", "--date", "2024-01-05", "--item", "Tea", "--amount", "50", "--mode", "Cash")
	assert.Contains(t, out, "remaining 950.00")
	id := regexp.MustCompile(`added (\S+) Tea`).FindStringSubmatch(out)
	require.Len(t, id, 2)

	c.mustRun("add", "--date", "2024-01-06", "--item", "Laptop", "--amount", "1200.5")

	out = c.mustRun("show")
	assert.Contains(t, out, "budget 1,000.00")
	assert.Contains(t, out, "spent 1,250.50")
	assert.Contains(t, out, "remaining -250.50")
	assert.Regexp(t, `Tea\s+1\s+Cash\s+50\.00\s+950\.00\s*\n`, out)
	assert.Regexp(t, `Laptop\s+1\s+cash\s+1,200\.50\s+-250\.50\s+!`, out)

	out = c.mustRun("delete", id[1])
	assert.Contains(t, out, "expense deleted")
	out = c.mustRun("show")
	assert.NotContains(t, out, "Tea")

	out = c.mustRun("budget", "add", "0.50")
	assert.Contains(t, out, "budget is now 1,000.50")

	_, err = c.run("clear")
	require.Error(t, err)
	c.mustRun("clear", "--yes")
	out = c.mustRun("show")
	assert.Contains(t, out, "no expenses yet")
	assert.Contains(t, out, "budget 0.00")

	c.mustRun("logout")
	_, err = c.run("show")
	require.ErrorIs(t, err, client.ErrLoginRequired)

	out = c.mustRun("login", "--name", "alice", "--password", "secret1")
	assert.Contains(t, out, "logged in as alice")
}

func TestCLI_Errors(t *testing.T) {
	c := newCLI(t)
	c.mustRun("register", "--name", "bob", "--email", "bob@x.com", "--password", "secret1")

	_, err := c.run("add", "--item", "Tea", "--amount", "1.234")
	require.ErrorIs(t, err, money.ErrPrecision)

	_, err = c.run("add", "--date", "2024-13-45", "--item", "Tea", "--amount", "1")
	require.Error(t, err)
	assert.Equal(t, "date must be formatted as YYYY-MM-DD", client.UserMessage(err))

	_, err = c.run("delete", "nope")
	require.Error(t, err)

	_, err = c.run("login", "--name", "bob", "--password", "nope!!")
	require.Error(t, err)
	assert.Equal(t, "invalid name or password", client.UserMessage(err))
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "0.00", formatMoney(0))
	assert.Equal(t, "12.30", formatMoney(1230))
	assert.Equal(t, "1,234,567.89", formatMoney(123456789))
	assert.Equal(t, "-5.00", formatMoney(-500))
}
