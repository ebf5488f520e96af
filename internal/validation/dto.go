package validation

// ResetPasswordRequest is the body of a password reset.
type ResetPasswordRequest struct {
	Email    string `json:"email" validate:"required,min=5,max=255,email"`
	Password string `json:"password" validate:"required,min=5,max=1024"`
}

func (r *ResetPasswordRequest) Validate() Result { return Validate(r) }

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Validate() Result { return Validate(r) }

// ArticleRequest creates or replaces a stored article.
type ArticleRequest struct {
	Title  string `json:"title" validate:"required,min=1,max=255"`
	Body   string `json:"body" validate:"required,min=1,max=20000"`
	ShowID *int64 `json:"show_id" validate:"omitempty,min=1"`
}

func (r *ArticleRequest) Validate() Result { return Validate(r) }
