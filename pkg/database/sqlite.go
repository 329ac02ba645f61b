package database

import (
	"database/sql"
	"errors"
	"log"

	"github.com/go-gorp/gorp/v3"
	"github.com/mattn/go-sqlite3"
)

type Sqlite struct {
	db    *sql.DB
	dbmap *gorp.DbMap
}

func NewSqlite(file string) Sqlite {
	sqlite := Sqlite{}

	// Initialize the database connection
	db, err := sql.Open("sqlite3", file)
	if err != nil {
		log.Panic("Unable to connect to database: ", err)
	}
	sqlite.db = db

	// Initialize the database mapping, creating the tables if it's our first run
	dbmap := &gorp.DbMap{Db: db, Dialect: gorp.SqliteDialect{}}
	dbmap.AddTableWithName(GradeRecord{}, "grades").SetUniqueTogether("SubmissionID", "QuestionID", "Attempt")
	err = dbmap.CreateTablesIfNotExists()
	if err != nil {
		log.Panic("Unable to create tables: ", err)
	}
	sqlite.dbmap = dbmap

	return sqlite
}

func (s Sqlite) SaveGrades(grades []GradeRecord) error {
	tx, err := s.dbmap.Begin()
	if err != nil {
		return err
	}
	for i := range grades {
		err := tx.Insert(&grades[i])
		var sqliteError sqlite3.Error
		if errors.As(err, &sqliteError) {
			if errors.Is(sqliteError.ExtendedCode, sqlite3.ErrConstraintUnique) {
				continue // silently ignore duplicates
			}
		}
		if err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (s Sqlite) Close() error {
	return s.db.Close()
}
