package model

// UserBuilder accumulates the fields of a NewUser.
type UserBuilder struct {
	username       slot[string]
	email          slot[string]
	profilePicture slot[[]byte]
	passwordHash   slot[string]
}

// NewUserBuilder returns an empty user builder.
func NewUserBuilder() *UserBuilder { return &UserBuilder{} }

func (b *UserBuilder) Username(username string) *UserBuilder {
	b.username.put(username)
	return b
}

func (b *UserBuilder) Email(email string) *UserBuilder {
	b.email.put(email)
	return b
}

// ProfilePicture is optional; the bytes are copied.
func (b *UserBuilder) ProfilePicture(pic []byte) *UserBuilder {
	b.profilePicture.put(cloneBytes(pic))
	return b
}

// PasswordHash takes the already hashed password, see crypto.Hasher.
func (b *UserBuilder) PasswordHash(hash string) *UserBuilder {
	b.passwordHash.put(hash)
	return b
}

// Build returns the NewUser or an *IncompleteError.
func (b *UserBuilder) Build() (NewUser, error) {
	r := required{entity: "user"}
	r.check("username", b.username.set)
	r.check("email", b.email.set)
	r.check("passwordHash", b.passwordHash.set)
	if err := r.err(); err != nil {
		return NewUser{}, err
	}
	return NewUser{
		Username:       b.username.v,
		Email:          b.email.v,
		ProfilePicture: cloneBytes(b.profilePicture.v),
		PasswordHash:   b.passwordHash.v,
	}, nil
}
