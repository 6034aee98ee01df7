// Copyright (c) 2017 Darren Whitlen <darren@kiwiirc.com>
// released under the MIT license

package irc

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/buntdb"
)

const (
	// 'version' of the database schema
	keySchemaVersion = "db.version"
	// latest schema of the db
	latestDbSchema = "1"

	keyChannelInfo = "channel.info %s"
)

type channelRecord struct {
	Name   string `json:"name"`
	Key    string `json:"key"`
	UseKey bool   `json:"use_key"`
}

// DataStore persists the channel bookkeeping between runs, so the bot
// rejoins its channels after a restart.
type DataStore struct {
	db *buntdb.DB
}

// OpenDataStore opens (creating if needed) the datastore at the given path
// and makes sure its schema is current.
func OpenDataStore(path string) (*DataStore, error) {
	db, err := buntdb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("Failed to open datastore: %s", err.Error())
	}

	err = db.Update(func(tx *buntdb.Tx) error {
		version, err := tx.Get(keySchemaVersion)
		if err == buntdb.ErrNotFound {
			_, _, err = tx.Set(keySchemaVersion, latestDbSchema, nil)
			return err
		}
		if err != nil {
			return err
		}
		if version != latestDbSchema {
			return fmt.Errorf("Datastore schema %s is not supported", version)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &DataStore{db: db}, nil
}

func (store *DataStore) Close() error {
	return store.db.Close()
}

// SaveChannel stores or replaces one channel record.
func (store *DataStore) SaveChannel(channel *Channel) error {
	record, err := json.Marshal(channelRecord{
		Name:   channel.Name,
		Key:    channel.Key,
		UseKey: channel.UseKey,
	})
	if err != nil {
		return err
	}

	return store.db.Update(func(tx *buntdb.Tx) error {
		_, _, err := tx.Set(fmt.Sprintf(keyChannelInfo, Casefold(channel.Name)), string(record), nil)
		return err
	})
}

// DelChannel removes one channel record. Removing a channel that was never
// stored is not an error.
func (store *DataStore) DelChannel(name string) error {
	return store.db.Update(func(tx *buntdb.Tx) error {
		_, err := tx.Delete(fmt.Sprintf(keyChannelInfo, Casefold(name)))
		if err == buntdb.ErrNotFound {
			return nil
		}
		return err
	})
}

// Channels loads every stored channel record.
func (store *DataStore) Channels() ([]*Channel, error) {
	var channels []*Channel
	var badRecords []string

	err := store.db.View(func(tx *buntdb.Tx) error {
		return tx.DescendKeys("channel.info *", func(key, value string) bool {
			var record channelRecord
			if err := json.Unmarshal([]byte(value), &record); err != nil {
				badRecords = append(badRecords, key)
				return true // continue looping through keys
			}
			channels = append(channels, &Channel{
				Name:   record.Name,
				Key:    record.Key,
				UseKey: record.UseKey,
			})
			return true
		})
	})
	if err != nil {
		return nil, err
	}
	if len(badRecords) > 0 {
		return channels, fmt.Errorf("Could not decode channel records: %s", strings.Join(badRecords, ", "))
	}

	return channels, nil
}
