package model

// RoleAdmin は管理者ロールを表す。トークンに埋め込まれる唯一のロール値。
const RoleAdmin = "admin"

// Principal はトークンが主張する呼び出し元の識別情報を表す。
type Principal struct {
	Username string
	Role     string
}

// IsAdmin は管理者ロールを持つかどうかを返す。
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}
