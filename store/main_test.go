package store

import (
	"fmt"
	"os"
	"testing"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/campuslink/campuslink/models"
)

// Integration tests run against a throwaway MySQL database and are skipped
// when none is reachable. Point TEST_DATABASE_DSN at one to enable them.
var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "root:root@tcp(127.0.0.1:3306)/campuslink_test?charset=utf8mb4&parseTime=True&loc=Local"
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err == nil {
		err = db.AutoMigrate(
			&models.User{},
			&models.College{},
			&models.EmailDomain{},
			&models.Designation{},
			&models.SignUpCode{},
			&models.Tag{},
			&models.File{},
			&models.Post{},
			&models.Reply{},
		)
		if err == nil {
			testDB = db
		}
	}
	if testDB == nil {
		fmt.Println("store: no test database reachable, integration tests will be skipped")
	}

	os.Exit(m.Run())
}

func requireDB(t *testing.T) *gorm.DB {
	t.Helper()
	if testDB == nil {
		t.Skip("test database not available")
	}
	resetTables(t)
	return testDB
}

func resetTables(t *testing.T) {
	t.Helper()
	tables := []string{
		"post_tags", "post_attachments", "post_upvoters", "post_downvoters",
		"reply_upvoters", "reply_downvoters",
		"user_designations", "tag_subscribers",
		"college_email_domains", "college_tags",
		"replies", "posts", "sign_up_codes", "files",
		"tags", "designations", "email_domains", "users", "colleges",
	}
	for _, table := range tables {
		if err := testDB.Exec("DELETE FROM " + table).Error; err != nil {
			t.Fatalf("reset %s: %v", table, err)
		}
	}
}

func createUser(t *testing.T, username string) *models.User {
	t.Helper()
	u := models.User{Username: username, Email: username + "@campus.edu"}
	if err := testDB.Create(&u).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return &u
}

func createTag(t *testing.T, name string) *models.Tag {
	t.Helper()
	tag := models.Tag{Name: name}
	if err := testDB.Create(&tag).Error; err != nil {
		t.Fatalf("create tag %s: %v", name, err)
	}
	return &tag
}

func newTestContentStore(t *testing.T) *ContentStore {
	t.Helper()
	return NewContentStore(testDB, NewFileStore(testDB, t.TempDir()))
}
