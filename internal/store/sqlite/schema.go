package sqlite

import "database/sql"

// Column lists shared by the upsert builders and the typed scans. Order
// matters: bind and scan code walks these in sequence.

var barCols = []string{
	"timestamp", "date", "open", "high", "low", "close", "volume",
}

var hourlyIndicatorCols = []string{
	"rsi_14", "rsi_sma_14", "rsi_diff", "rsi_slope", "rsi_dist_50", "rsi_zone",
	"roc_7", "roc_9", "roc_21", "roc_7_pos", "roc_diff_7_21",
	"ema_7", "ema_9", "ema_20", "ema_50", "ema_100", "sma_25", "lsma_25",
	"close_gt_lsma", "close_lt_lsma", "close_pct_lsma", "lsma_diff",
	"close_pct_sma_25", "ema_alignment",
	"bb_upper", "bb_lower", "bb_middle", "bb_width", "bb_squeeze",
	"bb_position", "bb_range", "bb_upper_slope", "bb_lower_slope",
	"atr_14", "atr_pct",
	"vwap", "close_pct_vwap",
	"break_high_5", "break_low_5",
	"vol_avg_20", "vol_rel_avg",
}

var dailyIndicatorCols = []string{
	"rsi_14", "rsi_slope", "ema_20", "ema_20_slope", "trend_flag",
}

var dailyMergeCols = []string{
	"daily_rsi_14", "daily_rsi_slope", "daily_ema_20", "daily_ema_20_slope",
	"daily_trend_flag",
}

func hourlyCols() []string {
	cols := append([]string{}, barCols...)
	cols = append(cols, hourlyIndicatorCols...)
	return append(cols, "target")
}

func dailyCols() []string {
	cols := append([]string{}, barCols...)
	cols = append(cols, dailyIndicatorCols...)
	return append(cols, "target")
}

func mergedCols() []string {
	cols := hourlyCols()
	cols = append(cols, "signal")
	return append(cols, dailyMergeCols...)
}

func createSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS nifty_15m (
			timestamp TEXT PRIMARY KEY,
			date      TEXT,
			open      REAL,
			high      REAL,
			low       REAL,
			close     REAL,
			volume    INTEGER,
			target    TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS nifty_1wk (
			timestamp TEXT PRIMARY KEY,
			date      TEXT,
			open      REAL,
			high      REAL,
			low       REAL,
			close     REAL,
			volume    INTEGER,
			target    TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS nifty_1h (
			timestamp         TEXT PRIMARY KEY,
			date              TEXT,
			open              REAL,
			high              REAL,
			low               REAL,
			close             REAL,
			volume            INTEGER,
			rsi_14            REAL,
			rsi_sma_14        REAL,
			rsi_diff          REAL,
			rsi_slope         REAL,
			rsi_dist_50       REAL,
			rsi_zone          TEXT,
			roc_7             REAL,
			roc_9             REAL,
			roc_21            REAL,
			roc_7_pos         INTEGER,
			roc_diff_7_21     REAL,
			ema_7             REAL,
			ema_9             REAL,
			ema_20            REAL,
			ema_50            REAL,
			ema_100           REAL,
			sma_25            REAL,
			lsma_25           REAL,
			close_gt_lsma     INTEGER,
			close_lt_lsma     INTEGER,
			close_pct_lsma    REAL,
			lsma_diff         REAL,
			close_pct_sma_25  REAL,
			ema_alignment     TEXT,
			bb_upper          REAL,
			bb_lower          REAL,
			bb_middle         REAL,
			bb_width          REAL,
			bb_squeeze        INTEGER,
			bb_position       REAL,
			bb_range          REAL,
			bb_upper_slope    REAL,
			bb_lower_slope    REAL,
			atr_14            REAL,
			atr_pct           REAL,
			vwap              REAL,
			close_pct_vwap    REAL,
			break_high_5      INTEGER,
			break_low_5       INTEGER,
			vol_avg_20        REAL,
			vol_rel_avg       REAL,
			target            TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS nifty_1d (
			timestamp     TEXT PRIMARY KEY,
			date          TEXT,
			open          REAL,
			high          REAL,
			low           REAL,
			close         REAL,
			volume        INTEGER,
			rsi_14        REAL,
			rsi_slope     REAL,
			ema_20        REAL,
			ema_20_slope  REAL,
			trend_flag    TEXT,
			target        TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_nifty_1h_date ON nifty_1h(date)`,
		`CREATE INDEX IF NOT EXISTS idx_nifty_1d_date ON nifty_1d(date)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	return createMergedSchema(db)
}

func createMergedSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS features_merged (
		timestamp            TEXT PRIMARY KEY,
		date                 TEXT,
		open                 REAL,
		high                 REAL,
		low                  REAL,
		close                REAL,
		volume               INTEGER,
		rsi_14               REAL,
		rsi_sma_14           REAL,
		rsi_diff             REAL,
		rsi_slope            REAL,
		rsi_dist_50          REAL,
		rsi_zone             TEXT,
		roc_7                REAL,
		roc_9                REAL,
		roc_21               REAL,
		roc_7_pos            INTEGER,
		roc_diff_7_21        REAL,
		ema_7                REAL,
		ema_9                REAL,
		ema_20               REAL,
		ema_50               REAL,
		ema_100              REAL,
		sma_25               REAL,
		lsma_25              REAL,
		close_gt_lsma        INTEGER,
		close_lt_lsma        INTEGER,
		close_pct_lsma       REAL,
		lsma_diff            REAL,
		close_pct_sma_25     REAL,
		ema_alignment        TEXT,
		bb_upper             REAL,
		bb_lower             REAL,
		bb_middle            REAL,
		bb_width             REAL,
		bb_squeeze           INTEGER,
		bb_position          REAL,
		bb_range             REAL,
		bb_upper_slope       REAL,
		bb_lower_slope       REAL,
		atr_14               REAL,
		atr_pct              REAL,
		vwap                 REAL,
		close_pct_vwap       REAL,
		break_high_5         INTEGER,
		break_low_5          INTEGER,
		vol_avg_20           REAL,
		vol_rel_avg          REAL,
		target               TEXT,
		signal               INTEGER,
		daily_rsi_14         REAL,
		daily_rsi_slope      REAL,
		daily_ema_20         REAL,
		daily_ema_20_slope   REAL,
		daily_trend_flag     INTEGER
	)`)
	if err != nil {
		return err
	}
	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_features_merged_date ON features_merged(date)`)
	return err
}
