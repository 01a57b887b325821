package model

import (
	"database/sql"
	"errors"
	"time"
)

// PortalSession is one authenticated agent-portal session. There are no user
// accounts behind the gate; the session only anchors the agent's wizard
// state and draft key.
type PortalSession struct {
	ID         int       `json:"id"`
	SessionID  string    `json:"session_id"`
	Token      string    `json:"token"`
	UserAgent  string    `json:"user_agent"`
	ClientIP   string    `json:"client_ip"`
	RememberMe bool      `json:"remember_me"`
	ExpiresAt  time.Time `json:"expires_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// CreatePortalSession inserts a new session into the database.
func CreatePortalSession(db *sql.DB, session *PortalSession) error {
	query := `
	INSERT INTO portal_sessions (session_id, token, user_agent, client_ip, remember_me, expires_at, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)`
	stmt, err := db.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	session.CreatedAt = time.Now()
	_, err = stmt.Exec(
		session.SessionID,
		session.Token,
		session.UserAgent,
		session.ClientIP,
		session.RememberMe,
		session.ExpiresAt,
		session.CreatedAt,
	)
	return err
}

// GetPortalSessionByToken retrieves an unexpired session by its token.
func GetPortalSessionByToken(db *sql.DB, token string) (*PortalSession, error) {
	query := `
	SELECT id, session_id, token, user_agent, client_ip, remember_me, expires_at, created_at
	FROM portal_sessions
	WHERE token = ? AND expires_at > ?`

	row := db.QueryRow(query, token, time.Now())
	var session PortalSession
	err := row.Scan(
		&session.ID,
		&session.SessionID,
		&session.Token,
		&session.UserAgent,
		&session.ClientIP,
		&session.RememberMe,
		&session.ExpiresAt,
		&session.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New("session not found or expired")
		}
		return nil, err
	}
	return &session, nil
}

// DeletePortalSessionByToken removes a session based on its token. A missing
// row is not an error; logout must always succeed.
func DeletePortalSessionByToken(db *sql.DB, token string) error {
	query := `DELETE FROM portal_sessions WHERE token = ?`
	stmt, err := db.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	_, err = stmt.Exec(token)
	return err
}
