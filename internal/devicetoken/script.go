package devicetoken

// script prints a stable per-machine id: the SHA-1 hex of the baseboard,
// BIOS and OS serial numbers. It stands in for the game client's own
// device token algorithm, which it does not reproduce.
const script = `$ErrorActionPreference = 'Stop'
$baseboard = (Get-CimInstance -ClassName Win32_BaseBoard).SerialNumber
$bios = (Get-CimInstance -ClassName Win32_BIOS).SerialNumber
$os = (Get-CimInstance -ClassName Win32_OperatingSystem).SerialNumber
$sha1 = [System.Security.Cryptography.SHA1]::Create()
$hash = $sha1.ComputeHash([System.Text.Encoding]::UTF8.GetBytes("$baseboard$bios$os"))
-join ($hash | ForEach-Object { $_.ToString('x2') })`
