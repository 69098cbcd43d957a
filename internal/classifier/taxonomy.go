package classifier

import "github.com/maxaizer/jobs-collector/internal/entities"

// Priority breaks score ties; earlier wins.
var Priority = []entities.Category{
	entities.CategoryBackend,
	entities.CategoryFrontend,
	entities.CategoryFullstack,
	entities.CategoryMobile,
	entities.CategoryAI,
	entities.CategoryData,
	entities.CategoryDevOps,
	entities.CategorySecurity,
	entities.CategoryEmbedded,
	entities.CategoryGame,
	entities.CategoryQA,
}

type signals struct {
	titleKeywords []string
	skills        []string
}

var taxonomy = map[entities.Category]signals{
	entities.CategoryBackend: {
		titleKeywords: []string{"백엔드", "backend", "back-end", "back end", "서버", "server", "api"},
		skills:        []string{"Java", "Kotlin", "Go", "Spring", "Spring Boot", "JPA", "Node.js", "NestJS", "Express", "Django", "Flask", "FastAPI", "Ruby on Rails", ".NET", "PHP", "MySQL", "PostgreSQL", "Oracle", "Redis", "Kafka", "RabbitMQ", "gRPC", "GraphQL"},
	},
	entities.CategoryFrontend: {
		titleKeywords: []string{"프론트엔드", "프론트", "frontend", "front-end", "front end", "웹 퍼블리셔", "퍼블리셔", "publisher", "ui 개발"},
		skills:        []string{"JavaScript", "TypeScript", "React", "Vue.js", "Angular", "Next.js", "Svelte", "HTML", "CSS"},
	},
	entities.CategoryFullstack: {
		titleKeywords: []string{"풀스택", "full-stack", "fullstack", "full stack"},
	},
	entities.CategoryMobile: {
		titleKeywords: []string{"안드로이드", "android", "ios", "모바일", "mobile", "앱 개발", "app developer", "flutter", "플러터"},
		skills:        []string{"Android", "iOS", "Swift", "Objective-C", "Flutter", "Dart", "React Native"},
	},
	entities.CategoryData: {
		titleKeywords: []string{"데이터", "data", "dba", "빅데이터", "analytics", "분석"},
		skills:        []string{"Spark", "Hadoop", "Airflow", "SQL", "Elasticsearch"},
	},
	entities.CategoryAI: {
		titleKeywords: []string{"머신러닝", "machine learning", "ml", "딥러닝", "deep learning", "ai", "인공지능", "llm", "nlp", "컴퓨터 비전", "vision"},
		skills:        []string{"TensorFlow", "PyTorch", "scikit-learn", "Machine Learning", "Deep Learning", "LLM"},
	},
	entities.CategoryDevOps: {
		titleKeywords: []string{"devops", "데브옵스", "sre", "인프라", "infra", "infrastructure", "클라우드", "cloud", "platform engineer", "시스템 엔지니어", "네트워크"},
		skills:        []string{"Kubernetes", "Docker", "Terraform", "Ansible", "Jenkins", "GitHub Actions", "AWS", "GCP", "Azure", "Linux"},
	},
	entities.CategorySecurity: {
		titleKeywords: []string{"보안", "security", "정보보호", "침해", "pentest", "모의해킹"},
	},
	entities.CategoryEmbedded: {
		titleKeywords: []string{"임베디드", "embedded", "펌웨어", "firmware", "rtos", "하드웨어"},
		skills:        []string{"Embedded", "C"},
	},
	entities.CategoryGame: {
		titleKeywords: []string{"게임", "game", "클라이언트 프로그래머", "client programmer"},
		skills:        []string{"Unity", "Unreal Engine"},
	},
	entities.CategoryQA: {
		titleKeywords: []string{"qa", "테스트", "test", "품질", "quality"},
		skills:        []string{"Selenium"},
	},
}

// sourceHints maps the native category labels of each source kind onto the taxonomy.
var sourceHints = map[string]map[string]entities.Category{
	"saramin": {
		"백엔드/서버개발": entities.CategoryBackend,
		"서버개발":     entities.CategoryBackend,
		"웹개발":      entities.CategoryBackend,
		"프론트엔드":    entities.CategoryFrontend,
		"웹퍼블리셔":    entities.CategoryFrontend,
		"풀스택":      entities.CategoryFullstack,
		"앱개발":      entities.CategoryMobile,
		"안드로이드":    entities.CategoryMobile,
		"ios":      entities.CategoryMobile,
		"데이터엔지니어":  entities.CategoryData,
		"빅데이터":     entities.CategoryData,
		"dba":      entities.CategoryData,
		"인공지능(ai)": entities.CategoryAI,
		"머신러닝":     entities.CategoryAI,
		"devops":   entities.CategoryDevOps,
		"시스템엔지니어":  entities.CategoryDevOps,
		"네트워크":     entities.CategoryDevOps,
		"보안":       entities.CategorySecurity,
		"정보보안":     entities.CategorySecurity,
		"임베디드":     entities.CategoryEmbedded,
		"펌웨어":      entities.CategoryEmbedded,
		"게임개발":     entities.CategoryGame,
		"qa":       entities.CategoryQA,
		"qa/테스터":   entities.CategoryQA,
	},
	"wanted": {
		"872":   entities.CategoryBackend,
		"660":   entities.CategoryBackend,
		"899":   entities.CategoryBackend,
		"895":   entities.CategoryBackend,
		"669":   entities.CategoryFrontend,
		"873":   entities.CategoryFullstack,
		"677":   entities.CategoryMobile,
		"678":   entities.CategoryMobile,
		"10111": entities.CategoryMobile,
		"655":   entities.CategoryData,
		"1025":  entities.CategoryData,
		"1634":  entities.CategoryAI,
		"1024":  entities.CategoryAI,
		"674":   entities.CategoryDevOps,
		"665":   entities.CategoryDevOps,
		"671":   entities.CategorySecurity,
		"658":   entities.CategoryEmbedded,
		"878":   entities.CategoryGame,
		"676":   entities.CategoryQA,
	},
	"jumpit": {
		"서버/백엔드 개발자":      entities.CategoryBackend,
		"프론트엔드 개발자":       entities.CategoryFrontend,
		"웹 풀스택 개발자":       entities.CategoryFullstack,
		"안드로이드 개발자":       entities.CategoryMobile,
		"ios 개발자":         entities.CategoryMobile,
		"크로스플랫폼 앱개발자":     entities.CategoryMobile,
		"데이터 엔지니어":        entities.CategoryData,
		"dba":             entities.CategoryData,
		"ai/ml 엔지니어":      entities.CategoryAI,
		"devops/시스템 엔지니어": entities.CategoryDevOps,
		"정보보안 담당자":        entities.CategorySecurity,
		"임베디드 개발자":        entities.CategoryEmbedded,
		"게임 클라이언트 개발자":    entities.CategoryGame,
		"게임 서버 개발자":       entities.CategoryGame,
		"qa 엔지니어":         entities.CategoryQA,
	},
}
