package eventbuilder

import (
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	sqlx "github.com/jmoiron/sqlx" //make alias name the package to sqlx
)

const channelMappingQuery = "SELECT Board, Channel, ChannelType FROM ChannelMapping " +
	"WHERE MinRun <= ? AND MaxRun >= ? ORDER BY Board, Channel"

type ChannelMappingRow struct {
	Board       int    `db:"Board"`
	Channel     int    `db:"Channel"`
	ChannelType string `db:"ChannelType"`
}

func ConnectToDatabase(user string, pass string, host string, dbname string) (*sqlx.DB, error) {
	port := "3306"
	dbURI := fmt.Sprintf("%s:%s@(%s:%s)/%s?parseTime=true", user, pass, host, port, dbname)
	db, err := sqlx.Connect("mysql", dbURI)
	return db, err
}

// LoadChannelMapFromDB reads the channel mapping valid for runNumber.
// Types not known to this build are kept as None.
func LoadChannelMapFromDB(db *sqlx.DB, runNumber int) (*ChannelMap, error) {
	if configuration.Verbosity > 0 {
		message := fmt.Sprintf("Reading channel map for run %d from database", runNumber)
		logger.Info(message, "database")
	}
	if configuration.Verbosity > 2 {
		message := fmt.Sprintf("Query: %s", channelMappingQuery)
		logger.Info(message, "database")
	}

	rows, err := db.Queryx(channelMappingQuery, runNumber, runNumber)
	if err != nil {
		return nil, fmt.Errorf("error querying database: %w", err)
	}
	defer rows.Close()

	entries := make([]ChannelMapEntry, 0)
	for rows.Next() {
		result := ChannelMappingRow{}
		if err := rows.StructScan(&result); err != nil {
			return nil, fmt.Errorf("error scanning DB row: %w", err)
		}
		if result.Board < 0 || result.Channel < 0 || result.Board > MaxBoardChannel || result.Channel > MaxBoardChannel {
			return nil, fmt.Errorf("%w: board %d channel %d", ErrChannelOutOfRange, result.Board, result.Channel)
		}
		channelType, err := ParseChannelType(result.ChannelType)
		if err != nil {
			logger.Error(fmt.Sprintf("board %d channel %d: %v", result.Board, result.Channel, err))
		}
		entries = append(entries, ChannelMapEntry{
			Board:       uint32(result.Board),
			Channel:     uint32(result.Channel),
			ChannelType: channelType,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading DB rows: %w", err)
	}
	return NewChannelMap(entries)
}
