package config

// 서비스 기본값 상수.
const (
	// DefaultServerPort: 게임화 서비스 HTTP 기본 포트
	DefaultServerPort = 40280
	// DefaultServiceName: OTel 리소스에 표시되는 서비스 이름
	DefaultServiceName = "gamification-service"
	// DefaultDBName: 기본 데이터베이스 이름
	DefaultDBName = "codepanel"
	// DefaultDBUser: 기본 데이터베이스 사용자
	DefaultDBUser = "codepanel_app"
	// DefaultConsumerName: Consumer Group 내 기본 소비자 식별자
	DefaultConsumerName = "gamification-1"
)
