// Package store provides data persistence implementations.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	apperrors "cryptofolio/internal/errors"
	"cryptofolio/internal/models"
)

// SQLiteStore implements DataStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based data store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Trades table for open and closed positions
	CREATE TABLE IF NOT EXISTS trades (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		coin TEXT NOT NULL,
		entry_price REAL NOT NULL,
		quantity REAL NOT NULL,
		fees REAL NOT NULL DEFAULT 0,
		entry_date TEXT NOT NULL,
		entry_time TEXT NOT NULL,
		notes TEXT,
		status TEXT NOT NULL DEFAULT 'open',
		selected_plan_id TEXT,
		closed_date TEXT,
		closed_time TEXT,
		closed_price REAL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Exit plans, owned by their trade; position preserves insertion order
	CREATE TABLE IF NOT EXISTS exit_plans (
		id TEXT PRIMARY KEY,
		trade_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		target_price REAL NOT NULL,
		quantity REAL NOT NULL,
		stop_loss REAL NOT NULL DEFAULT 0,
		notes TEXT,
		status TEXT NOT NULL DEFAULT 'pending',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (trade_id) REFERENCES trades(id) ON DELETE CASCADE
	);

	-- Idea board notes
	CREATE TABLE IF NOT EXISTS ideas (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		content TEXT NOT NULL,
		color TEXT,
		position_x REAL NOT NULL DEFAULT 0,
		position_y REAL NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Coaching videos
	CREATE TABLE IF NOT EXISTS videos (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		title TEXT NOT NULL,
		url TEXT NOT NULL,
		description TEXT,
		category TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Trading signals
	CREATE TABLE IF NOT EXISTS signals (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		coin TEXT NOT NULL,
		type TEXT NOT NULL,
		entry_price REAL NOT NULL,
		target_price REAL NOT NULL,
		stop_loss REAL NOT NULL DEFAULT 0,
		description TEXT,
		risk TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'active',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Saved what-if simulations
	CREATE TABLE IF NOT EXISTS simulations (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		coin TEXT NOT NULL,
		entry_price REAL NOT NULL,
		exit_price REAL NOT NULL,
		investment REAL NOT NULL,
		entry_fees REAL NOT NULL DEFAULT 0,
		exit_fees REAL NOT NULL DEFAULT 0,
		network_fees REAL NOT NULL DEFAULT 0,
		sim_date TEXT,
		sim_time TEXT,
		notes TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Community chat messages, shared across users
	CREATE TABLE IF NOT EXISTS messages (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		sender TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Users and sessions for the local auth provider
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		display_name TEXT,
		password_hash TEXT NOT NULL,
		password_salt TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		expires_at DATETIME NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users(id)
	);

	CREATE INDEX IF NOT EXISTS idx_trades_user ON trades(user_id);
	CREATE INDEX IF NOT EXISTS idx_trades_status ON trades(status);
	CREATE INDEX IF NOT EXISTS idx_plans_trade ON exit_plans(trade_id, position);
	CREATE INDEX IF NOT EXISTS idx_ideas_user ON ideas(user_id);
	CREATE INDEX IF NOT EXISTS idx_videos_user ON videos(user_id);
	CREATE INDEX IF NOT EXISTS idx_signals_user ON signals(user_id);
	CREATE INDEX IF NOT EXISTS idx_simulations_user ON simulations(user_id);
	CREATE INDEX IF NOT EXISTS idx_messages_created ON messages(created_at);
	CREATE INDEX IF NOT EXISTS idx_sessions_expires ON sessions(expires_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ============================================================================
// Trades
// ============================================================================

// ListTrades returns all trades for a user, newest first, with their exit
// plans in insertion order.
func (s *SQLiteStore) ListTrades(ctx context.Context, userID string) ([]models.Trade, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, coin, entry_price, quantity, fees, entry_date, entry_time,
		       notes, status, selected_plan_id, closed_date, closed_time, closed_price, created_at
		FROM trades
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades: %w", err)
	}
	defer rows.Close()

	var trades []models.Trade
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		trades = append(trades, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trades: %w", err)
	}

	for i := range trades {
		plans, err := s.loadExitPlans(ctx, trades[i].ID)
		if err != nil {
			return nil, err
		}
		trades[i].ExitPlans = plans
	}
	return trades, nil
}

// GetTrade returns a single trade with its exit plans.
func (s *SQLiteStore) GetTrade(ctx context.Context, userID, tradeID string) (*models.Trade, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, coin, entry_price, quantity, fees, entry_date, entry_time,
		       notes, status, selected_plan_id, closed_date, closed_time, closed_price, created_at
		FROM trades
		WHERE user_id = ? AND id = ?
	`, userID, tradeID)

	t, err := scanTrade(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrTradeNotFound
	}
	if err != nil {
		return nil, err
	}

	plans, err := s.loadExitPlans(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	t.ExitPlans = plans
	return &t, nil
}

// SaveTrade inserts a trade and its exit plans in one transaction.
func (s *SQLiteStore) SaveTrade(ctx context.Context, userID string, trade models.Trade) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertTrade(ctx, tx, userID, trade); err != nil {
		return err
	}
	if err := insertExitPlans(ctx, tx, trade.ID, trade.ExitPlans); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// UpdateTrade replaces a trade row and its exit plans wholesale, in one
// transaction. The stored plan set always mirrors the snapshot.
func (s *SQLiteStore) UpdateTrade(ctx context.Context, userID string, trade models.Trade) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var selectedPlan, closedDate, closedTime interface{}
	var closedPrice interface{}
	if trade.SelectedPlanID != "" {
		selectedPlan = trade.SelectedPlanID
	}
	if trade.ClosedAt != nil {
		closedDate = trade.ClosedAt.Date
		closedTime = trade.ClosedAt.Time
		closedPrice = trade.ClosedAt.Price
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE trades
		SET coin = ?, entry_price = ?, quantity = ?, fees = ?, entry_date = ?, entry_time = ?,
		    notes = ?, status = ?, selected_plan_id = ?, closed_date = ?, closed_time = ?, closed_price = ?
		WHERE user_id = ? AND id = ?
	`, trade.Coin, trade.EntryPrice, trade.Quantity, trade.Fees, trade.Date, trade.Time,
		trade.Notes, string(trade.Status), selectedPlan, closedDate, closedTime, closedPrice,
		userID, trade.ID)
	if err != nil {
		return fmt.Errorf("failed to update trade: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.ErrTradeNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM exit_plans WHERE trade_id = ?`, trade.ID); err != nil {
		return fmt.Errorf("failed to clear exit plans: %w", err)
	}
	if err := insertExitPlans(ctx, tx, trade.ID, trade.ExitPlans); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteTrade removes a trade and its exit plans in one transaction.
// Deleting a trade that does not exist is a no-op.
func (s *SQLiteStore) DeleteTrade(ctx context.Context, userID, tradeID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM exit_plans WHERE trade_id IN (SELECT id FROM trades WHERE user_id = ? AND id = ?)
	`, userID, tradeID); err != nil {
		return fmt.Errorf("failed to delete exit plans: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM trades WHERE user_id = ? AND id = ?`, userID, tradeID); err != nil {
		return fmt.Errorf("failed to delete trade: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTrade(row rowScanner) (models.Trade, error) {
	var t models.Trade
	var notes, selectedPlan, closedDate, closedTime sql.NullString
	var closedPrice sql.NullFloat64

	err := row.Scan(&t.ID, &t.Coin, &t.EntryPrice, &t.Quantity, &t.Fees, &t.Date, &t.Time,
		&notes, &t.Status, &selectedPlan, &closedDate, &closedTime, &closedPrice, &t.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return t, err
		}
		return t, fmt.Errorf("failed to scan trade: %w", err)
	}

	t.Notes = notes.String
	t.SelectedPlanID = selectedPlan.String
	if closedPrice.Valid {
		t.ClosedAt = &models.ClosedAt{
			Date:  closedDate.String,
			Time:  closedTime.String,
			Price: closedPrice.Float64,
		}
	}
	return t, nil
}

func (s *SQLiteStore) loadExitPlans(ctx context.Context, tradeID string) ([]models.ExitPlan, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, target_price, quantity, stop_loss, notes, status, created_at
		FROM exit_plans
		WHERE trade_id = ?
		ORDER BY position ASC
	`, tradeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query exit plans: %w", err)
	}
	defer rows.Close()

	plans := []models.ExitPlan{}
	for rows.Next() {
		var p models.ExitPlan
		var notes sql.NullString
		if err := rows.Scan(&p.ID, &p.TargetPrice, &p.Quantity, &p.StopLoss, &notes, &p.Status, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan exit plan: %w", err)
		}
		p.Notes = notes.String
		plans = append(plans, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating exit plans: %w", err)
	}
	return plans, nil
}

func insertTrade(ctx context.Context, tx *sql.Tx, userID string, trade models.Trade) error {
	var selectedPlan, closedDate, closedTime, closedPrice interface{}
	if trade.SelectedPlanID != "" {
		selectedPlan = trade.SelectedPlanID
	}
	if trade.ClosedAt != nil {
		closedDate = trade.ClosedAt.Date
		closedTime = trade.ClosedAt.Time
		closedPrice = trade.ClosedAt.Price
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO trades (id, user_id, coin, entry_price, quantity, fees, entry_date, entry_time,
		                    notes, status, selected_plan_id, closed_date, closed_time, closed_price, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, trade.ID, userID, trade.Coin, trade.EntryPrice, trade.Quantity, trade.Fees, trade.Date, trade.Time,
		trade.Notes, string(trade.Status), selectedPlan, closedDate, closedTime, closedPrice, trade.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert trade: %w", err)
	}
	return nil
}

func insertExitPlans(ctx context.Context, tx *sql.Tx, tradeID string, plans []models.ExitPlan) error {
	if len(plans) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO exit_plans (id, trade_id, position, target_price, quantity, stop_loss, notes, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, p := range plans {
		if _, err := stmt.ExecContext(ctx, p.ID, tradeID, i, p.TargetPrice, p.Quantity, p.StopLoss, p.Notes, string(p.Status), p.CreatedAt); err != nil {
			return fmt.Errorf("failed to insert exit plan: %w", err)
		}
	}
	return nil
}

// ============================================================================
// Ideas
// ============================================================================

// ListIdeas returns all idea notes for a user, newest first.
func (s *SQLiteStore) ListIdeas(ctx context.Context, userID string) ([]models.IdeaNote, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, content, color, position_x, position_y, created_at
		FROM ideas
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ideas: %w", err)
	}
	defer rows.Close()

	var ideas []models.IdeaNote
	for rows.Next() {
		var idea models.IdeaNote
		var color sql.NullString
		if err := rows.Scan(&idea.ID, &idea.Content, &color, &idea.PositionX, &idea.PositionY, &idea.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan idea: %w", err)
		}
		idea.Color = color.String
		ideas = append(ideas, idea)
	}
	return ideas, rows.Err()
}

// SaveIdea inserts an idea note.
func (s *SQLiteStore) SaveIdea(ctx context.Context, userID string, idea models.IdeaNote) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ideas (id, user_id, content, color, position_x, position_y, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, idea.ID, userID, idea.Content, idea.Color, idea.PositionX, idea.PositionY, idea.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert idea: %w", err)
	}
	return nil
}

// UpdateIdea updates an idea note's content, color and board position.
func (s *SQLiteStore) UpdateIdea(ctx context.Context, userID string, idea models.IdeaNote) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE ideas SET content = ?, color = ?, position_x = ?, position_y = ?
		WHERE user_id = ? AND id = ?
	`, idea.Content, idea.Color, idea.PositionX, idea.PositionY, userID, idea.ID)
	if err != nil {
		return fmt.Errorf("failed to update idea: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.ErrDataNotFound
	}
	return nil
}

// DeleteIdea removes an idea note. Unknown ids are a no-op.
func (s *SQLiteStore) DeleteIdea(ctx context.Context, userID, ideaID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM ideas WHERE user_id = ? AND id = ?`, userID, ideaID)
	if err != nil {
		return fmt.Errorf("failed to delete idea: %w", err)
	}
	return nil
}

// ============================================================================
// Videos
// ============================================================================

// ListVideos returns all saved videos for a user, newest first.
func (s *SQLiteStore) ListVideos(ctx context.Context, userID string) ([]models.Video, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, url, description, category, created_at
		FROM videos
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query videos: %w", err)
	}
	defer rows.Close()

	var videos []models.Video
	for rows.Next() {
		var v models.Video
		var description sql.NullString
		if err := rows.Scan(&v.ID, &v.Title, &v.URL, &description, &v.Category, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan video: %w", err)
		}
		v.Description = description.String
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

// SaveVideo inserts a video.
func (s *SQLiteStore) SaveVideo(ctx context.Context, userID string, video models.Video) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO videos (id, user_id, title, url, description, category, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, video.ID, userID, video.Title, video.URL, video.Description, string(video.Category), video.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert video: %w", err)
	}
	return nil
}

// DeleteVideo removes a video. Unknown ids are a no-op.
func (s *SQLiteStore) DeleteVideo(ctx context.Context, userID, videoID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM videos WHERE user_id = ? AND id = ?`, userID, videoID)
	if err != nil {
		return fmt.Errorf("failed to delete video: %w", err)
	}
	return nil
}

// ============================================================================
// Signals
// ============================================================================

// ListSignals returns all signals for a user, newest first.
func (s *SQLiteStore) ListSignals(ctx context.Context, userID string) ([]models.Signal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, coin, type, entry_price, target_price, stop_loss, description, risk, status, created_at
		FROM signals
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query signals: %w", err)
	}
	defer rows.Close()

	var signals []models.Signal
	for rows.Next() {
		var sig models.Signal
		var description sql.NullString
		if err := rows.Scan(&sig.ID, &sig.Coin, &sig.Type, &sig.EntryPrice, &sig.TargetPrice,
			&sig.StopLoss, &description, &sig.Risk, &sig.Status, &sig.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan signal: %w", err)
		}
		sig.Description = description.String
		signals = append(signals, sig)
	}
	return signals, rows.Err()
}

// SaveSignal inserts a signal.
func (s *SQLiteStore) SaveSignal(ctx context.Context, userID string, signal models.Signal) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO signals (id, user_id, coin, type, entry_price, target_price, stop_loss, description, risk, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, signal.ID, userID, signal.Coin, string(signal.Type), signal.EntryPrice, signal.TargetPrice,
		signal.StopLoss, signal.Description, string(signal.Risk), string(signal.Status), signal.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert signal: %w", err)
	}
	return nil
}

// UpdateSignalStatus changes a signal's status.
func (s *SQLiteStore) UpdateSignalStatus(ctx context.Context, userID, signalID string, status models.SignalStatus) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE signals SET status = ? WHERE user_id = ? AND id = ?
	`, string(status), userID, signalID)
	if err != nil {
		return fmt.Errorf("failed to update signal: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.ErrDataNotFound
	}
	return nil
}

// DeleteSignal removes a signal. Unknown ids are a no-op.
func (s *SQLiteStore) DeleteSignal(ctx context.Context, userID, signalID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM signals WHERE user_id = ? AND id = ?`, userID, signalID)
	if err != nil {
		return fmt.Errorf("failed to delete signal: %w", err)
	}
	return nil
}

// ============================================================================
// Simulations
// ============================================================================

// ListSimulations returns a user's saved simulations, newest first.
func (s *SQLiteStore) ListSimulations(ctx context.Context, userID string) ([]models.Simulation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, coin, entry_price, exit_price, investment, entry_fees, exit_fees, network_fees,
		       sim_date, sim_time, notes, created_at
		FROM simulations
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query simulations: %w", err)
	}
	defer rows.Close()

	var sims []models.Simulation
	for rows.Next() {
		var sim models.Simulation
		var date, clock, notes sql.NullString
		if err := rows.Scan(&sim.ID, &sim.Coin, &sim.EntryPrice, &sim.ExitPrice, &sim.Investment,
			&sim.EntryFees, &sim.ExitFees, &sim.NetworkFees, &date, &clock, &notes, &sim.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan simulation: %w", err)
		}
		sim.Date = date.String
		sim.Time = clock.String
		sim.Notes = notes.String
		sims = append(sims, sim)
	}
	return sims, rows.Err()
}

// SaveSimulation inserts a simulation.
func (s *SQLiteStore) SaveSimulation(ctx context.Context, userID string, sim models.Simulation) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO simulations (id, user_id, coin, entry_price, exit_price, investment,
		                         entry_fees, exit_fees, network_fees, sim_date, sim_time, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, sim.ID, userID, sim.Coin, sim.EntryPrice, sim.ExitPrice, sim.Investment,
		sim.EntryFees, sim.ExitFees, sim.NetworkFees, sim.Date, sim.Time, sim.Notes, sim.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert simulation: %w", err)
	}
	return nil
}

// ============================================================================
// Messages
// ============================================================================

// ListMessages returns the most recent chat messages in chronological order.
func (s *SQLiteStore) ListMessages(ctx context.Context, limit int) ([]models.Message, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, sender, content, created_at FROM (
			SELECT id, user_id, sender, content, created_at
			FROM messages
			ORDER BY created_at DESC, id DESC
			LIMIT ?
		) ORDER BY created_at ASC, id ASC
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var msgs []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.UserID, &m.Sender, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// SaveMessage inserts a chat message.
func (s *SQLiteStore) SaveMessage(ctx context.Context, msg models.Message) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (id, user_id, sender, content, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, msg.ID, msg.UserID, msg.Sender, msg.Content, msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	return nil
}

// ============================================================================
// Users & Sessions
// ============================================================================

// CreateUser inserts a user account.
func (s *SQLiteStore) CreateUser(ctx context.Context, user models.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, display_name, password_hash, password_salt, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, user.ID, user.Email, user.DisplayName, user.PasswordHash, user.PasswordSalt, user.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// GetUser returns a user by id.
func (s *SQLiteStore) GetUser(ctx context.Context, userID string) (*models.User, error) {
	return s.getUser(ctx, `SELECT id, email, display_name, password_hash, password_salt, created_at FROM users WHERE id = ?`, userID)
}

// GetUserByEmail returns a user by email.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, `SELECT id, email, display_name, password_hash, password_salt, created_at FROM users WHERE email = ?`, email)
}

func (s *SQLiteStore) getUser(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	var u models.User
	var displayName sql.NullString
	err := s.db.QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.Email, &displayName, &u.PasswordHash, &u.PasswordSalt, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrDataNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	u.DisplayName = displayName.String
	return &u, nil
}

// CreateSession inserts a session.
func (s *SQLiteStore) CreateSession(ctx context.Context, session models.Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (token, user_id, created_at, expires_at)
		VALUES (?, ?, ?, ?)
	`, session.Token, session.UserID, session.CreatedAt, session.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

// GetSession returns a session by token.
func (s *SQLiteStore) GetSession(ctx context.Context, token string) (*models.Session, error) {
	var sess models.Session
	err := s.db.QueryRowContext(ctx, `
		SELECT token, user_id, created_at, expires_at FROM sessions WHERE token = ?
	`, token).Scan(&sess.Token, &sess.UserID, &sess.CreatedAt, &sess.ExpiresAt)
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrDataNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan session: %w", err)
	}
	return &sess, nil
}

// DeleteSession removes a session. Unknown tokens are a no-op.
func (s *SQLiteStore) DeleteSession(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions removes sessions past their expiry.
func (s *SQLiteStore) DeleteExpiredSessions(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < ?`, time.Now())
	if err != nil {
		return fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return nil
}
