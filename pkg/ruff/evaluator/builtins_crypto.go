package evaluator

import (
	"golang.org/x/crypto/bcrypt"
)

var cryptoBuiltins = map[string]BuiltinFunction{
	"hash_password":   builtinHashPassword,
	"verify_password": builtinVerifyPassword,
}

// builtinHashPassword returns a bcrypt hash of the password
func builtinHashPassword(env *Environment, args ...Object) Object {
	password, errObj := stringArg("hash_password", args)
	if errObj != nil {
		return errObj
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return newError("FORMAT-0002", map[string]any{"Reason": err.Error()})
	}
	return &String{Value: string(hash)}
}

// builtinVerifyPassword checks verify_password(password, hash). A malformed
// hash is a mismatch, not an error.
func builtinVerifyPassword(env *Environment, args ...Object) Object {
	if len(args) != 2 {
		return arityError("verify_password", 2, len(args))
	}
	password, ok := args[0].(*String)
	if !ok {
		return argError("verify_password", "a string password", args[0])
	}
	hash, ok := args[1].(*String)
	if !ok {
		return argError("verify_password", "a string hash", args[1])
	}
	return nativeBool(bcrypt.CompareHashAndPassword([]byte(hash.Value), []byte(password.Value)) == nil)
}
