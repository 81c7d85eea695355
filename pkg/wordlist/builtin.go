package wordlist

import "github.com/authprobe/authprobe/pkg/defaults"

type builtIn struct {
	typ   WordlistType
	words []string
}

var builtIns = map[string]builtIn{
	"passwords": {TypePasswords, []string{
		"123456", "Secr3t!", "password", "letmein", "hunter2", "admin2025",
	}},
	"usernames": {TypeUsernames, []string{
		"admin", "alice", "test", "user1", "secr3t!", "guest",
	}},
	"auth-paths": {TypeAPI, defaults.CommonAuthPaths()},
	"common-dirs": {TypeDirectories, []string{
		"admin", "administrator", "api", "app", "assets", "auth", "backup",
		"bin", "cgi-bin", "config", "console", "dashboard", "data", "db",
		"debug", "dev", "docs", "download", "files", "hidden", "images",
		"includes", "js", "login", "logs", "panel", "phpmyadmin", "portal",
		"private", "public", "rest", "secure", "server-status", "setup",
		"static", "status", "storage", "temp", "test", "tmp", "upload",
		"uploads", "user", "users", "v1", "v2", ".git", ".env", ".htaccess",
	}},
}
