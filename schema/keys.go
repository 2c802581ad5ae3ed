package schema

import "os"

// ConfigPath is the registry subkey holding the agent settings, relative to
// the agent's root.
const ConfigPath = "CONFIG"

var hostname = os.Hostname

// CJKEncodings lists the encodings accepted by cjk_encoding.
var CJKEncodings = []string{
	"UTF-8",
	"JAPANESE EUC",
	"JAPANESE SHIFT-JIS",
	"KOREAN EUC",
	"SIMPLIFIED CHINESE GBK",
	"SIMPLIFIED CHINESE GB",
	"TRADITIONAL CHINESE EUC",
	"TRADITIONAL CHINESE BIG5",
}

func cfg(name string) Location {
	return Location{Path: ConfigPath, Name: name}
}

func port(name string, def int, value, desc string) Key {
	return Key{
		Name: name, Kind: KindInt, Default: def, Min: 1024, Max: 65535,
		Location: cfg(value), RequiresRestart: true, Description: desc,
	}
}

func flag(name string, def bool, value, desc string) Key {
	return Key{Name: name, Kind: KindBool, Default: def, Location: cfg(value), Description: desc}
}

func text(name, def, value, desc string) Key {
	return Key{Name: name, Kind: KindString, Default: def, Location: cfg(value), Description: desc}
}

func number(name string, def, min, max int, value, desc string) Key {
	return Key{Name: name, Kind: KindInt, Default: def, Min: min, Max: max, Location: cfg(value), Description: desc}
}

func identity(name string, loc Location, desc string) Key {
	return Key{Name: name, Kind: KindString, Default: "", Location: loc, ReadOnly: true, Description: desc}
}

// AgentKeys is the Control-M/Agent for Windows settings table.
func AgentKeys() []Key {
	keys := []Key{
		port("agent_to_server_port", 7005, "AGCMNDATA",
			"Port on the agent computer where data is received from Control-M/Server."),
		port("server_to_agent_port", 7006, "ATCMNDATA",
			"Port that receives data from the agent computer."),
		text("primary_controlm_server_host", "", "CTMSHOST",
			"Host name of the Control-M/Server that submits jobs to this agent."),
		{
			Name: "authorized_controlm_server_hosts", Kind: KindString, Default: "",
			Location: cfg("CTMPERMHOSTS"), ListSeparator: "|",
			Description: "Servers allowed to send requests to this agent, separated by |.",
		},
		number("diagnostic_level", 0, 0, 4, "DBGLVL",
			"Debug level, 0 for no diagnostics up to 4."),
		{
			Name: "communication_trace", Kind: KindBool, Default: false,
			Location: cfg("COMM_TRACE"), RequiresRestart: true,
			Description: "Write the packets exchanged with Control-M/Server to a file.",
		},
		number("days_to_retain_log_files", 1, 1, 99, "LOGKEEPDAYS",
			"Days to retain agent proclog files."),
		flag("daily_log_file_enabled", true, "AG_LOG_ON",
			"Generate the ctmag_<year><month><day>.log file."),
		port("tracker_event_port", 7035, "TRACKER_EVENT_PORT",
			"Port used to send messages to the Tracker process when jobs end."),
		{
			Name: "logical_agent_name", Kind: KindString, Location: cfg("LOGICAL_AGENT_NAME"),
			DefaultFunc: func() interface{} {
				h, err := hostname()
				if err != nil {
					return ""
				}
				return h
			},
			Description: "Logical name of the agent, the agent host name by default.",
		},
		flag("persistent_connection", false, "PERSISTENT_CONNECTION",
			"Keep a persistent connection between the server and the agent."),
		flag("allow_comm_init", true, "ALLOW_COMM_INIT",
			"Allow the agent to open the connection in persistent connection mode."),
		{
			Name: "foreign_language_support", Kind: KindEnum, Default: "LATIN-1",
			Choices: []string{"LATIN-1", "CJK"}, Location: cfg("FOREIGN_LANGUAGE_SUPPORT"),
			Description: "Whether the system is configured for CJK or Latin-1 languages.",
		},
		{
			Name: "ssl", Kind: KindBool, Default: false,
			Location: cfg("COMMOPT_SSL"), RequiresRestart: true,
			Description: "Encrypt the communication between Control-M/Server and the agent.",
		},
		number("server_agent_protocol_version", 12, 1, 12, "PROTOCOL_VERSION",
			"Server-agent communication protocol version."),
		flag("autoedit_inline", true, "AUTOEDIT_INLINE",
			"Set all variables as environment variables in the script."),
		{
			Name: "listen_to_network_interface", Kind: KindString, Default: "*ANY",
			Location: cfg("LISTEN_INTERFACE"), RequiresRestart: true,
			Description: "Network interface the agent listens on, *ANY for all of them.",
		},
		{
			Name: "ctms_address_mode", Kind: KindEnum, Default: "",
			Choices: []string{"", "IP"}, Location: cfg("CTMS_ADDR_MODE"),
			Description: "Save the server IP address instead of its host name.",
		},
		number("timeout_for_agent_utilities", 600, 0, 999999, "UTTIMEOUT",
			"Seconds the agent waits after sending a request to Control-M/Server."),
		number("tcpip_timeout", 60, 0, 999999, "COMTIMOUT",
			"Communication job-tracking timeout in seconds."),
		number("tracker_polling_interval", 60, 1, 86400, "TRACKER_INTERVAL",
			"Tracker event timeout in seconds."),
		{
			Name: "limit_log_file_size", Kind: KindInt, Default: 10, Min: 1, Max: 1000,
			Location: cfg("LIMIT_LOG_FILE_SIZE"), RequiresRestart: true,
			Description: "Maximum size (MB) of a diagnostic log file.",
		},
		{
			Name: "limit_log_version", Kind: KindInt, Default: 10, Min: 0, Max: 99,
			Location: cfg("LIMIT_LOG_VERSIONS"), RequiresRestart: true,
			Description: "Generations of diagnostic log files to keep.",
		},
		number("measure_usage_day", 7, 1, 99, "MEASURE_USAGE_DAY",
			"Days to retain the files of the dailylog directory."),
		flag("logon_as_user", false, "LOGON_AS_USER",
			"Submit jobs with the permissions of the job owner instead of the local system account."),
		text("logon_domain", "", "LOGON_DOMAIN",
			"Domain used when the job Run_As does not name one."),
		flag("job_children_inside_job_object", true, "JOB_CHILDREN_INSIDE_JOB_OBJECT",
			"Run procedures invoked by a job outside the job object."),
		flag("add_job_statistics_to_sysout", true, "JOB_STATISTIC",
			"Append job object statistics to the OUTPUT file."),
		{
			Name: "job_output_name", Kind: KindEnum, Default: "MEMNAME",
			Choices: []string{"MEMNAME", "JOBNAME"}, Location: cfg("OUTPUT_NAME"),
			Description: "Prefix of the OUTPUT file name.",
		},
		number("wrap_parameters_with_double_quotes", 4, 1, 4, "WRAP_PARAM_QUOTES",
			"How %%PARMn parameter values are quoted when passed to the operating system."),
		flag("run_user_logon_script", false, "RUN_USER_LOGON_SCRIPT",
			"Run the user-defined logon script before the standard one."),
		{
			Name: "cjk_encoding", Kind: KindEnum, Default: "UTF-8",
			Choices: CJKEncodings, Location: cfg("CJK_ENCODING"),
			Description: "CJK encoding used to run jobs.",
		},
		text("default_printer", "", "DFTPRT",
			"Default printer for job OUTPUT files."),
		flag("echo_job_commands_into_sysout", true, "ECHO_OUTPUT",
			"Print the job commands in the job OUTPUT."),
		text("smtp_server_relay_name", "", "SMTP_SERVER_NAME",
			"Name of the SMTP server."),
		number("smtp_port", 25, 0, 65535, "SMTP_PORT_NUMBER",
			"Port of the SMTP server."),
		{
			Name: "smtp_sender_mail", Kind: KindString, Default: "control@m", MaxLength: 99,
			Location: cfg("SMTP_SENDER_EMAIL"),
			Description: "E-mail address of the sender.",
		},
		text("smtp_sender_friendly_name", "", "SMTP_SENDER_FRIENDLY_NAME",
			"Name or alias shown on the e-mail sent."),
		text("smtp_reply_to_mail", "", "SMTP_REPLY_TO_EMAIL",
			"Reply-to address, the sender address when empty."),

		identity("default_agent_name", Location{Name: "DefaultAgentName"}, "Name of the default agent."),
		identity("cm_name", cfg("CM_NAME"), "Control-M application name."),
		identity("cm_type", cfg("CM_TYPE"), "Control-M platform type."),
		identity("agent_version", cfg("CODE_VERSION"), "Agent version."),
		identity("fd_number", cfg("FD_NUMBER"), "Unique identifier of the agent build."),
		identity("fix_number", cfg("FIX_NUMBER"), "Unique identifier of the fix pack."),
		identity("agent_directory", cfg("AGENT_DIR"), "Installation folder of the agent."),
	}
	return keys
}

// Agent returns the schema of a Control-M/Agent for Windows.
func Agent() *Schema {
	return MustNew(AgentKeys())
}
