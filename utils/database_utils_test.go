package utils

import (
	"os"
	"testing"

	"github.com/rinblog/rin/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTempDB(t *testing.T) {
	db, dbName := CreateTempDB(t)
	require.True(t, isTempDB(dbName))

	for _, table := range []interface{}{&model.User{}, &model.Feed{}, &model.Hashtag{}, &model.Comment{}, &model.Friend{}} {
		assert.True(t, db.Migrator().HasTable(table))
	}
	assert.True(t, db.Migrator().HasTable("feed_hashtags"))
}

func TestIsTempDB(t *testing.T) {
	assert.True(t, isTempDB(randomTestDBName()))
	assert.False(t, isTempDB("postgres"))
}

func TestIsDatabaseExist(t *testing.T) {
	if os.Getenv("DB_DRIVER") != DriverPostgres {
		t.Skip("needs a postgres server")
	}
	exists, err := IsDatabaseExist("postgres")
	assert.Nil(t, err)
	assert.True(t, exists)

	exists, err = IsDatabaseExist("DOES_NOT_EXIST")
	assert.Nil(t, err)
	assert.False(t, exists)
}
