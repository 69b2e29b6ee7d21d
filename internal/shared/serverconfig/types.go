package serverconfig

import "time"

type Config struct {
	Relay     RelayConfig   `yaml:"relay" mapstructure:"relay"`
	Client    ClientConfig  `yaml:"client" mapstructure:"client"`
	Game      GameConfig    `yaml:"game" mapstructure:"game"`
	Archive   ArchiveConfig `yaml:"archive" mapstructure:"archive"`
	Log       LogConfig     `yaml:"log" mapstructure:"log"`
	JWTSecret string        `yaml:"jwt_secret" mapstructure:"jwt_secret"`
}

// RelayConfig 是中继服务配置。
type RelayConfig struct {
	Host       string        `yaml:"host" mapstructure:"host"`
	Port       int           `yaml:"port" mapstructure:"port"`
	NeedAuth   bool          `yaml:"need_auth" mapstructure:"need_auth"`
	TokenTTL   time.Duration `yaml:"token_ttl" mapstructure:"token_ttl"`
	RatePerSec float64       `yaml:"rate_per_sec" mapstructure:"rate_per_sec"` // 每连接每秒帧数
	Burst      int           `yaml:"burst" mapstructure:"burst"`
	WriteWait  time.Duration `yaml:"write_wait" mapstructure:"write_wait"`
	PongWait   time.Duration `yaml:"pong_wait" mapstructure:"pong_wait"`
	SendQueue  int           `yaml:"send_queue" mapstructure:"send_queue"` // 每连接待发队列长度
	MaxFrame   int64         `yaml:"max_frame" mapstructure:"max_frame"`   // 单帧最大字节数
}

// ClientConfig 是对局客户端（bot）配置。
type ClientConfig struct {
	RelayURL   string        `yaml:"relay_url" mapstructure:"relay_url"`
	Topic      string        `yaml:"topic" mapstructure:"topic"`
	TokenURL   string        `yaml:"token_url" mapstructure:"token_url"`
	AskTimeout time.Duration `yaml:"ask_timeout" mapstructure:"ask_timeout"`
	MaxTurns   int           `yaml:"max_turns" mapstructure:"max_turns"`
}

type GameConfig struct {
	AssertInvariants bool `yaml:"assert_invariants" mapstructure:"assert_invariants"`
}

// ArchiveConfig 选择对局归档的存储：memory / mongodb / mysql。
type ArchiveConfig struct {
	Driver  string        `yaml:"driver" mapstructure:"driver"`
	MongoDB MongoDBConfig `yaml:"mongodb" mapstructure:"mongodb"`
	MySQL   MySQLConfig   `yaml:"mysql" mapstructure:"mysql"`
}

type MongoDBConfig struct {
	URI             string `yaml:"uri" mapstructure:"uri"`
	Database        string `yaml:"database" mapstructure:"database"`
	ConnectTimeoutS int    `yaml:"connect_timeout_s" mapstructure:"connect_timeout_s"`
}

type MySQLConfig struct {
	Host     string `yaml:"host" mapstructure:"host"`
	Port     int    `yaml:"port" mapstructure:"port"`
	User     string `yaml:"user" mapstructure:"user"`
	Password string `yaml:"password" mapstructure:"password"`
	DBName   string `yaml:"dbname" mapstructure:"dbname"`
	Charset  string `yaml:"charset" mapstructure:"charset"`
	MaxIdle  int    `yaml:"max_idle" mapstructure:"max_idle"`
	MaxConn  int    `yaml:"max_conn" mapstructure:"max_conn"`
}

type LogConfig struct {
	FileDir    string `yaml:"file_dir" mapstructure:"file_dir"`
	MaxSize    int    `yaml:"max_size" mapstructure:"max_size"` // MB
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAge     int    `yaml:"max_age" mapstructure:"max_age"` // days
	Compress   bool   `yaml:"compress" mapstructure:"compress"`
	Level      string `yaml:"level" mapstructure:"level"` // debug/info/warn/error...
	Dev        bool   `yaml:"dev" mapstructure:"dev"`
}
