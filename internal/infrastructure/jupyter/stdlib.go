package jupyter

var stdlibModules = map[string]struct{}{
	"__future__": {}, "abc": {}, "argparse": {}, "array": {}, "ast": {}, "asyncio": {},
	"base64": {}, "bisect": {}, "builtins": {}, "bz2": {}, "calendar": {}, "cmath": {},
	"codecs": {}, "collections": {}, "concurrent": {}, "configparser": {}, "contextlib": {},
	"copy": {}, "csv": {}, "ctypes": {}, "dataclasses": {}, "datetime": {}, "decimal": {},
	"difflib": {}, "enum": {}, "errno": {}, "fnmatch": {}, "fractions": {}, "functools": {},
	"gc": {}, "getpass": {}, "glob": {}, "gzip": {}, "hashlib": {}, "heapq": {}, "hmac": {},
	"html": {}, "http": {}, "importlib": {}, "inspect": {}, "io": {}, "itertools": {},
	"json": {}, "logging": {}, "lzma": {}, "math": {}, "multiprocessing": {}, "numbers": {},
	"operator": {}, "os": {}, "pathlib": {}, "pickle": {}, "platform": {}, "pprint": {},
	"queue": {}, "random": {}, "re": {}, "shutil": {}, "signal": {}, "socket": {},
	"sqlite3": {}, "statistics": {}, "string": {}, "struct": {}, "subprocess": {}, "sys": {},
	"tarfile": {}, "tempfile": {}, "textwrap": {}, "threading": {}, "time": {}, "timeit": {},
	"traceback": {}, "types": {}, "typing": {}, "unicodedata": {}, "unittest": {}, "urllib": {},
	"urllib2": {}, "uuid": {}, "warnings": {}, "weakref": {}, "xml": {}, "zipfile": {}, "zlib": {},
	"cPickle": {}, "StringIO": {}, "cStringIO": {}, "ConfigParser": {},
}

func isStdlib(module string) bool {
	_, ok := stdlibModules[module]
	return ok
}
