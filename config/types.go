package config

type ScraperConfig struct {
	Queries               []string
	Region                string
	MaxItems              int
	IncludeProductDetails bool
	IncludeReviews        bool
	Workers               int
	Proxy                 ProxyConfig
	Redis                 RedisConfig
	Mongo                 MongoConfig
	Postgres              PostgresConfig
}

type ProxyConfig struct {
	Url     string
	Enabled bool
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
	Enabled  bool
}

type MongoConfig struct {
	URI         string
	DBName      string
	RecordsColl string
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSL      bool
	Enabled  bool
}
