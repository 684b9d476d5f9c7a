package persistence

import (
	"net/url"
	"testing"

	"social-scheduler/infrastructure/configuration"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMSSQLDSN(t *testing.T) {
	t.Run("azure host keeps certificate validation", func(t *testing.T) {
		dsn := mssqlDSN(configuration.Db{Host: "srv.database.windows.net", Port: "1433", Name: "scheduler", User: "app", Password: "p@ss"})

		u, err := url.Parse(dsn)
		require.NoError(t, err)
		assert.Equal(t, "sqlserver", u.Scheme)
		assert.Equal(t, "srv.database.windows.net:1433", u.Host)
		assert.Equal(t, "scheduler", u.Query().Get("database"))
		assert.Equal(t, "true", u.Query().Get("encrypt"))
		assert.Empty(t, u.Query().Get("TrustServerCertificate"))
		pass, _ := u.User.Password()
		assert.Equal(t, "p@ss", pass)
	})

	t.Run("local host trusts certificate", func(t *testing.T) {
		u, err := url.Parse(mssqlDSN(configuration.Db{Host: "localhost", Port: "1433", User: "sa"}))
		require.NoError(t, err)
		assert.Equal(t, "true", u.Query().Get("TrustServerCertificate"))
		assert.Equal(t, "sa", u.User.Username())
		_, hasPass := u.User.Password()
		assert.False(t, hasPass)
	})
}
