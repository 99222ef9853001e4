package redis

import "fmt"

// Key prefix for all guild data
const keyPrefix = "questguild"

func heroKey(id int64) string {
	return fmt.Sprintf("%s:hero:%d", keyPrefix, id)
}

// usernameIndexKey maps a username to its hero id
func usernameIndexKey(username string) string {
	return fmt.Sprintf("%s:idx:username:%s", keyPrefix, username)
}

func questKey(id int64) string {
	return fmt.Sprintf("%s:quest:%d", keyPrefix, id)
}

// heroQuestsKey is the SET of quest ids owned by a hero
func heroQuestsKey(heroID int64) string {
	return fmt.Sprintf("%s:idx:hero_quests:%d", keyPrefix, heroID)
}

func heroSeqKey() string {
	return fmt.Sprintf("%s:seq:hero", keyPrefix)
}

func questSeqKey() string {
	return fmt.Sprintf("%s:seq:quest", keyPrefix)
}
